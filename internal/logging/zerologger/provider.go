// Package zerologger adapts github.com/rs/zerolog to the pagetree logging
// contract.
package zerologger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// Config selects the output writer, level and format ("json" or "console").
type Config struct {
	Writer io.Writer
	Level  string
	Format string
}

type Provider struct {
	root zerolog.Logger
}

func NewProvider(cfg Config) (*Provider, error) {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
	case "console", "pretty":
		writer = zerolog.ConsoleWriter{Out: writer}
	default:
		return nil, fmt.Errorf("logging: unsupported zerolog format %q", cfg.Format)
	}

	level := zerolog.InfoLevel
	if trimmed := strings.TrimSpace(cfg.Level); trimmed != "" {
		if trimmed == "warning" {
			trimmed = "warn"
		}
		parsed, err := zerolog.ParseLevel(strings.ToLower(trimmed))
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}

	root := zerolog.New(zerolog.SyncWriter(writer)).Level(level).With().Timestamp().Logger()
	return &Provider{root: root}, nil
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	return &adapter{inner: p.root.With().Str("logger", name).Logger()}
}

type adapter struct {
	inner zerolog.Logger
	ctx   context.Context
}

func (l *adapter) Trace(msg string, args ...any) { l.write(l.inner.Trace(), msg, args) }
func (l *adapter) Debug(msg string, args ...any) { l.write(l.inner.Debug(), msg, args) }
func (l *adapter) Info(msg string, args ...any)  { l.write(l.inner.Info(), msg, args) }
func (l *adapter) Warn(msg string, args ...any)  { l.write(l.inner.Warn(), msg, args) }
func (l *adapter) Error(msg string, args ...any) { l.write(l.inner.Error(), msg, args) }

// Fatal logs at fatal level without terminating the process.
func (l *adapter) Fatal(msg string, args ...any) {
	l.write(l.inner.WithLevel(zerolog.FatalLevel), msg, args)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return &adapter{inner: l.inner.With().Fields(fields).Logger(), ctx: l.ctx}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return &adapter{inner: l.inner, ctx: ctx}
}

func (l *adapter) write(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	if fields := logging.ContextFields(l.ctx); len(fields) > 0 {
		event = event.Fields(fields)
	}
	if len(args) > 0 {
		event = event.Fields(args)
	}
	event.Msg(msg)
}
