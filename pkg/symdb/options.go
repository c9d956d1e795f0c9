package symdb

import "log/slog"

// Options configures Open. A nil *Options means defaults.
type Options struct {
	// Version is stamped into a newly created file.
	Version int32

	// DisableMmap keeps chunks in private buffers instead of mapping them.
	DisableMmap bool

	// VerifyOnOpen runs the full heap check before returning from Open.
	VerifyOnOpen bool

	// Logger overrides the module logger.
	Logger *slog.Logger
}
