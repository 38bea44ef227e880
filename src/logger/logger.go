package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// -----------------------------------------------------------------------------

// levelProvider is satisfied by models.MConfig (and anything embedding it).
type levelProvider interface {
	GetLogLevel() string
}

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *log.Logger
	config interface{}
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance writing to stdout.
// config may be nil; when it exposes GetLogLevel() its level is used.
func NewLogger(config interface{}, name string) *Logger {
	return NewLoggerWithOutput(config, name, os.Stdout)
}

// -----------------------------------------------------------------------------

// NewLoggerWithOutput creates a Logger writing console lines to w.
func NewLoggerWithOutput(config interface{}, name string, w io.Writer) *Logger {
	level := "INFO"
	if lp, ok := config.(levelProvider); ok && lp.GetLogLevel() != "" {
		level = lp.GetLogLevel()
	}

	return &Logger{
		name: name,
		logger: &log.Logger{
			Level:      parseLevel(level),
			TimeFormat: "2006-01-02 15:04:05",
			Writer: &log.ConsoleWriter{
				Writer:         w,
				EndWithMessage: true,
			},
		},
		config: config,
	}
}

// -----------------------------------------------------------------------------

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger(name string) *Logger {
	return NewLoggerWithOutput(nil, name, io.Discard)
}

// -----------------------------------------------------------------------------

// Named returns a logger sharing this logger's configuration under another name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, logger: l.logger, config: l.config}
}

// -----------------------------------------------------------------------------

func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debug().Str("component", l.name).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warn().Str("component", l.name).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Info().Str("component", l.name).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Error().Str("component", l.name).Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logger.Error().Str("component", l.name).Str("severity", "CRITICAL").Msg(msg)
	os.Exit(1)
}
