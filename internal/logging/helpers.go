package logging

import (
	"maps"

	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// WithFields attaches a copy of fields to the logger. Nil loggers and empty
// maps are returned untouched.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return logger.WithFields(copied)
}

// Ensure returns logger or a no-op logger when nil.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}
