package rufus

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logging hook a Scheduler calls into: lifecycle transitions
// and worker failures, never anything from the hot path of a tick that
// found nothing due. The default implementation is a no-op; callers that
// want output supply NewZerologLogger or their own implementation.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NoOpLogger discards everything. It is the Scheduler default.
type NoOpLogger struct{}

func (NoOpLogger) Debugf(format string, args ...any) {}
func (NoOpLogger) Infof(format string, args ...any)  {}
func (NoOpLogger) Warnf(format string, args ...any)  {}
func (NoOpLogger) Errorf(format string, args ...any) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger returns a Logger backed by zerolog, writing to stderr in
// zerolog's console-writer format.
func NewZerologLogger() *ZerologLogger {
	return &ZerologLogger{logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()}
}

// NewZerologLoggerFrom wraps an already-configured zerolog.Logger, letting
// callers control output format, level, and sinks themselves.
func NewZerologLoggerFrom(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: l}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.logger.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}
