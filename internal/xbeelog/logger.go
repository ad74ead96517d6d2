// Package xbeelog wraps zerolog with optional rotating-file output, in the
// style of the logging wrapper this module's ambient stack is grounded on.
package xbeelog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how verbosely a Logger writes.
type Config struct {
	Path       string // empty writes to stdout
	Level      string // zerolog level name; defaults to "info"
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Logger is a thin, structured-field wrapper over a zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger from cfg. A zero Config logs at info level to
// stdout.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Path != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return &Logger{z: zerolog.New(w).With().Timestamp().Logger().Level(level)}
}

// Nop returns a Logger that discards everything, for tests and library
// consumers that haven't configured logging.
func Nop() *Logger {
	return &Logger{z: zerolog.Nop()}
}

// With returns a child Logger with the given structured fields attached to
// every subsequent entry.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	ctx := l.z.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{z: ctx.Logger()}
}

func (l *Logger) Debug(msg string) { l.z.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.z.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.z.Warn().Msg(msg) }

func (l *Logger) Error(msg string, err error) {
	l.z.Error().Err(err).Msg(msg)
}
