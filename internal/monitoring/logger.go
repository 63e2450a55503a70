// Package monitoring - logger.go provides structured logging via zerolog.
//
// DESIGN: Thin wrapper around zerolog with:
//   - Configurable level, format (json/console/auto), output (stdout/stderr/file)
//   - Global() sets the default logger for the entire application
//   - Session key context helpers for correlating capture events
package monitoring

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/compresr/prompt-capture/internal/config"
)

// Context keys for session tracking.
type contextKey string

const SessionKeyKey contextKey = "session_key"

// Logger wraps zerolog.Logger.
type Logger struct {
	zl zerolog.Logger
}

// New creates a new Logger with the given configuration.
func New(cfg config.MonitoringConfig) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writer io.Writer
	isTerminal := false
	switch cfg.LogOutput {
	case "stdout":
		writer = os.Stdout
		isTerminal = term.IsTerminal(int(os.Stdout.Fd()))
	case "stderr", "":
		writer = os.Stderr
		isTerminal = term.IsTerminal(int(os.Stderr.Fd()))
	default:
		f, err := os.OpenFile(cfg.LogOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			writer = os.Stderr
		} else {
			writer = f
		}
	}

	useConsole := cfg.LogFormat == "console" || (cfg.LogFormat == "auto" && isTerminal)
	if useConsole {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Global sets the global zerolog logger.
func Global(cfg config.MonitoringConfig) {
	logger := New(cfg)
	log.Logger = logger.zl
}

// Debug returns a debug event.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info returns an info event.
func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn returns a warn event.
func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error returns an error event.
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// SessionKeyFromContext retrieves the session key from context.
func SessionKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(SessionKeyKey).(string); ok {
		return key
	}
	return ""
}

// WithSessionKeyContext returns a new context with the session key.
func WithSessionKeyContext(ctx context.Context, sessionKey string) context.Context {
	return context.WithValue(ctx, SessionKeyKey, sessionKey)
}
