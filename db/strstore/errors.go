package strstore

import "errors"

// ErrCorruptString indicates a negative length, a segment that runs past its
// chunk, or a chain that ends before the stored length is consumed.
var ErrCorruptString = errors.New("strstore: corrupt string record")
