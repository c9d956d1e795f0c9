package format

import "errors"

// ErrCrossesChunk indicates a field or block that would straddle two chunks.
var ErrCrossesChunk = errors.New("format: field crosses chunk boundary")
