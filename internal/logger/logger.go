// Package logger holds the module-wide structured logger.
//
// Logging is off by default: L discards everything until Init is called or
// the SYMDB_LOG environment variable names a level ("debug", "info", "warn",
// "error"), in which case a text handler on stderr is installed at startup.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar enables stderr logging at the named level when set.
const EnvVar = "SYMDB_LOG"

// L is the global logger instance.
var L = fromEnv(os.Getenv(EnvVar))

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum log level. Default: LevelInfo
	JSON    bool       // Use the JSON handler instead of text
}

// Init replaces L according to opts.
func Init(opts Options) {
	L = New(opts)
}

// New builds a logger from opts without touching L.
func New(opts Options) *slog.Logger {
	if !opts.Enabled {
		return slog.New(slog.DiscardHandler)
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, ho))
	}
	return slog.New(slog.NewTextHandler(out, ho))
}

func fromEnv(v string) *slog.Logger {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "0" || v == "off" {
		return New(Options{})
	}
	level := slog.LevelInfo
	switch v {
	case "debug", "1", "true":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return New(Options{Enabled: true, Level: level})
}

// Or returns l when non-nil and the global logger otherwise.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return L
}
