package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging throughout the launcher.
// Components receive a Logger in their constructor instead of reaching for a global.
type Logger interface {
	Trace(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ZerologLogger writes human-readable logs through zerolog's console writer.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewConsoleLogger returns a logger writing to stderr at the given level
// ("trace", "debug", "info", "warn", "error"). Unknown levels fall back to info.
func NewConsoleLogger(level string) *ZerologLogger {
	return NewZerologLogger(os.Stderr, level)
}

func NewZerologLogger(w io.Writer, level string) *ZerologLogger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return &ZerologLogger{
		log: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

// With returns a child logger tagged with a component name.
func (z *ZerologLogger) With(component string) *ZerologLogger {
	return &ZerologLogger{log: z.log.With().Str("component", component).Logger()}
}

func (z *ZerologLogger) Trace(msg string, args ...interface{}) {
	z.log.Trace().Msg(format(msg, args))
}

func (z *ZerologLogger) Debug(msg string, args ...interface{}) {
	z.log.Debug().Msg(format(msg, args))
}

func (z *ZerologLogger) Info(msg string, args ...interface{}) {
	z.log.Info().Msg(format(msg, args))
}

func (z *ZerologLogger) Warn(msg string, args ...interface{}) {
	z.log.Warn().Msg(format(msg, args))
}

func (z *ZerologLogger) Error(msg string, args ...interface{}) {
	z.log.Error().Msg(format(msg, args))
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// SilentLogger discards all log messages.
// Used in tests and while the download progress view owns the terminal.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Trace(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Warn(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
