package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for production log aggregation.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for development.
	FormatText Format = "text"
)

// Config holds logger settings loaded from the environment.
type Config struct {
	Format Format `env:"LOG_FORMAT" envDefault:"json"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

// DefaultConfig returns production-safe logger defaults.
func DefaultConfig() Config {
	return Config{Format: FormatJSON, Level: "info"}
}

// Option configures logger creation.
type Option func(*factoryConfig)

type factoryConfig struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

// WithLevel overrides the log level.
func WithLevel(l slog.Level) Option {
	return func(c *factoryConfig) { c.level = l }
}

// WithFormat overrides the output format.
// Panics for unknown formats so misconfiguration is caught at startup.
func WithFormat(f Format) Option {
	return func(c *factoryConfig) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput sets a custom output destination, ignoring nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *factoryConfig) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *factoryConfig) {
		if len(attrs) > 0 {
			c.attrs = append(c.attrs, attrs...)
		}
	}
}

// New creates a slog.Logger from the given config and options.
// Options take precedence over Config values.
func New(cfg Config, opts ...Option) *slog.Logger {
	fc := &factoryConfig{
		level:  parseLevel(cfg.Level),
		format: cfg.Format,
		output: os.Stdout,
	}
	if fc.format != FormatText {
		fc.format = FormatJSON
	}

	for _, opt := range opts {
		opt(fc)
	}

	handlerOpts := &slog.HandlerOptions{Level: fc.level}

	var handler slog.Handler
	if fc.format == FormatText {
		handler = slog.NewTextHandler(fc.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(fc.output, handlerOpts)
	}

	if len(fc.attrs) > 0 {
		handler = handler.WithAttrs(fc.attrs)
	}

	return slog.New(handler)
}

// SetAsDefault installs the logger as the process-wide slog default.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
