package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-pagetree/internal/logging/console"
	"github.com/goliatone/go-pagetree/internal/logging/gologger"
	"github.com/goliatone/go-pagetree/internal/logging/zerologger"
	"github.com/goliatone/go-pagetree/internal/runtimeconfig"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// NewLoggerProvider builds the provider named by cfg.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
	case "zerolog":
		return zerologger.NewProvider(zerologger.Config{
			Level:  cfg.Level,
			Format: cfg.Format,
		})
	case "", "console":
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	default:
		return nil, fmt.Errorf("di: unknown logging provider %q", cfg.Provider)
	}
}
