package typecodec

import "errors"

var (
	// ErrUnmarshal indicates a truncated stream, an unknown tag or a
	// malformed field.
	ErrUnmarshal = errors.New("typecodec: cannot unmarshal")

	// ErrMarshal indicates a type or value that has no encoding.
	ErrMarshal = errors.New("typecodec: cannot marshal")
)
