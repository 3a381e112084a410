package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogLevel represents the available log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DisableFileLog can be passed as the file path to skip the file handler.
const DisableFileLog = "-"

// Logger wraps slog.Logger with folio's component and intention helpers.
type Logger struct {
	*slog.Logger
}

// Options controls where a Logger writes.
type Options struct {
	Level LogLevel
	// Console receives plain, undecorated lines. Defaults to os.Stderr.
	Console io.Writer
	// File is the path of the structured text log. Empty means
	// ~/.folio/logs/folio.log; DisableFileLog turns it off.
	File string
}

// ParseLevel maps a LogLevel to its slog level, defaulting to info.
func ParseLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn, "warning":
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger at the given level writing to stderr and the default log file.
func NewLogger(level LogLevel) *Logger {
	return New(Options{Level: level})
}

// NewLoggerWithConsoleWriter builds a logger that writes console output to the given writer
func NewLoggerWithConsoleWriter(level LogLevel, consoleWriter io.Writer) *Logger {
	return New(Options{Level: level, Console: consoleWriter})
}

// New builds a logger that fans out to a console handler and, unless disabled, a file handler.
func New(opts Options) *Logger {
	slogLevel := ParseLevel(opts.Level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	handlers := []slog.Handler{newPlainHandler(console, slogLevel)}

	if opts.File != DisableFileLog {
		if h := newFileTextHandler(opts.File, slogLevel); h != nil {
			handlers = append(handlers, h)
		}
	}

	return &Logger{Logger: slog.New(newMultiHandler(handlers...))}
}

// NewDiscardLogger returns a logger that drops everything. Handy in tests.
func NewDiscardLogger() *Logger {
	return New(Options{Level: LogLevelError, Console: io.Discard, File: DisableFileLog})
}

// WithComponent creates a logger with a component context for better tracing
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With("component", component)}
}

// WithRequest tags every line with a request id.
func (l *Logger) WithRequest(requestID string) *Logger {
	return &Logger{Logger: l.With("request_id", requestID)}
}

// LogWithIntention logs at the given level and attaches the intention attribute.
func (l *Logger) LogWithIntention(level slog.Level, intention Intention, msg string, args ...any) {
	kv := append([]any{"intention", string(intention)}, args...)
	l.Log(context.Background(), level, msg, kv...)
}

func (l *Logger) InfoWithIntention(intention Intention, msg string, args ...any) {
	l.LogWithIntention(slog.LevelInfo, intention, msg, args...)
}

func (l *Logger) DebugWithIntention(intention Intention, msg string, args ...any) {
	l.LogWithIntention(slog.LevelDebug, intention, msg, args...)
}

// Warnings and errors do not carry intentions; the level is enough.
func (l *Logger) WarnWithIntention(_ Intention, msg string, args ...any) {
	l.Warn(msg, args...)
}

func (l *Logger) ErrorWithIntention(_ Intention, msg string, args ...any) {
	l.Error(msg, args...)
}

// Default logger instance shared by package-level component loggers.
var Default = New(Options{Level: LogLevelInfo, File: DisableFileLog})

// SetGlobalLogger replaces Default. Component loggers created afterwards use it.
func SetGlobalLogger(l *Logger) {
	Default = l
}

// NewComponentLogger creates a new logger for a specific component
func NewComponentLogger(component string) *Logger {
	return &Logger{Logger: slog.New(&lazyHandler{attrs: []slog.Attr{slog.String("component", component)}})}
}

// newFileTextHandler opens the log file for append and returns a slog text handler.
// It returns nil when the file cannot be opened; console logging still works.
func newFileTextHandler(path string, level slog.Level) slog.Handler {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".folio", "logs", "folio.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{Key: "time", Value: slog.StringValue(a.Value.Time().Format("15:04:05.000"))}
			}
			return a
		},
	}
	return slog.NewTextHandler(f, opts)
}
