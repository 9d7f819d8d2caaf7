// Package log provides logging utilities.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/phsym/console-slog"
	slogformatter "github.com/samber/slog-formatter"
)

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatDev     = "dev"
	FormatText    = "text"
	FormatJSON    = "json"
)

var newHandler = slogformatter.NewFormatterHandler(
	slogformatter.ErrorFormatter("error"),
	slogformatter.FormatByType(func(b []byte) slog.Value {
		return slog.StringValue(fmt.Sprintf("%q", b))
	}),
)

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h noopHandler) WithGroup(string) slog.Handler { return h }

// Noop is a noop logger.
var Noop = slog.New(noopHandler{})

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
// An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

// New builds a logger writing to w at the given level. The format is one of
// FormatConsole, FormatDev, FormatText or FormatJSON; anything else is an
// error.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	var h slog.Handler
	switch strings.ToLower(format) {
	case "", FormatConsole:
		h = console.NewHandler(w, &console.HandlerOptions{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	case FormatDev:
		h = devslog.NewHandler(w, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     level,
			},
			SortKeys:   true,
			TimeFormat: time.RFC3339Nano,
		})
	case FormatText:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(newHandler(h)), nil
}

// Bytes returns a value logger that formats b as a quoted string.
func Bytes(b []byte) slog.LogValuer { return bytesValue(b) }

type bytesValue []byte

func (v bytesValue) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%q", []byte(v)))
}
