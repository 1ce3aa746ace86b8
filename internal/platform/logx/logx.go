// internal/platform/logx/logx.go
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case name used in configuration.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures a logger built by NewWithOptions.
type Options struct {
	Level  Level
	Format Format
	Writer io.Writer
}

type slogLogger struct {
	lvl *slog.LevelVar
	lg  *slog.Logger
}

// New builds a text logger on stderr with the level taken from LOG_LEVEL.
func New() Logger {
	return NewWithOptions(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: FormatText,
	})
}

// NewWithLevel creates a logger with a specific log level
func NewWithLevel(lvl Level) Logger {
	return NewWithOptions(Options{Level: lvl, Format: FormatText})
}

// NewSilent creates a logger that only outputs errors
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewDiscard creates a logger that drops everything (tests).
func NewDiscard() Logger {
	return NewWithOptions(Options{Level: LevelError, Writer: io.Discard})
}

// NewWithOptions builds a slog-backed logger.
func NewWithOptions(opts Options) Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	lv := new(slog.LevelVar)
	lv.Set(toSlog(opts.Level))

	hopts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if opts.Format == FormatJSON {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}

	return &slogLogger{lvl: lv, lg: slog.New(h)}
}

func (s *slogLogger) With(kv ...any) Logger {
	return &slogLogger{lvl: s.lvl, lg: s.lg.With(kv...)}
}

// SetLevel changes the level for this logger and every logger derived from it.
func (s *slogLogger) SetLevel(lvl Level) {
	s.lvl.Set(toSlog(lvl))
}

func (s *slogLogger) Debug(msg string, kv ...any) { s.log(slog.LevelDebug, msg, kv...) }
func (s *slogLogger) Info(msg string, kv ...any)  { s.log(slog.LevelInfo, msg, kv...) }
func (s *slogLogger) Warn(msg string, kv ...any)  { s.log(slog.LevelWarn, msg, kv...) }
func (s *slogLogger) Error(msg string, kv ...any) { s.log(slog.LevelError, msg, kv...) }

func (s *slogLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	kv = append([]any{"error", err.Error()}, kv...)
	s.log(slog.LevelError, "", kv...)
}

func (s *slogLogger) log(l slog.Level, msg string, kv ...any) {
	s.lg.Log(context.Background(), l, msg, kv...)
}

func toSlog(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps configuration strings (case-insensitive) to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat maps configuration strings to a Format; anything but "json" is text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
