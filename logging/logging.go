// Package logging builds the service logger: a tint handler on stdout plus,
// when configured, a Fluent Bit handler.
package logging

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

type Config struct {
	Service     string
	Level       slog.Level
	NoColor     bool
	Fluent      *fluent.Fluent
	FluentLevel slog.Level
}

// New returns a logger tagged with the service name. Output goes to w and,
// if cfg.Fluent is set, to Fluent Bit as well.
func New(w io.Writer, cfg Config) *slog.Logger {
	handlers := []slog.Handler{
		tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.DateTime,
			NoColor:    cfg.NoColor,
		}),
	}
	if cfg.Fluent != nil {
		handlers = append(handlers, NewFluentHandler(cfg.Fluent, cfg.FluentLevel))
	}

	var h slog.Handler = fanoutHandler(handlers)
	if len(handlers) == 1 {
		h = handlers[0]
	}
	return slog.New(h).With(slog.String("service", cfg.Service))
}

// NewFluentClient connects to Fluent Bit asynchronously so that an
// unreachable collector never blocks startup.
func NewFluentClient(host string, port int, tagPrefix string) (*fluent.Fluent, error) {
	return fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
		TagPrefix:  tagPrefix,
		Async:      true,
	})
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: unknown log level %q, defaulting to info", s)
		return slog.LevelInfo
	}
}

// fanoutHandler forwards each record to every handler that accepts its level.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
