package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger keeps the variadic Info/Error style used across the app on top of zerolog.
type Logger struct {
	zl      zerolog.Logger
	rotator *lumberjack.Logger
}

// NewLogger writes human-readable lines to stdout and, when logDir is set,
// JSON lines to a rotating file in logDir.
func NewLogger(debug bool, logDir string) (*Logger, error) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	var rotator *lumberjack.Logger
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "marquee.log"),
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
			LocalTime:  true,
		}
		out = io.MultiWriter(out, rotator)
	}

	l := NewWriterLogger(debug, out)
	l.rotator = rotator
	return l, nil
}

// NewWriterLogger logs JSON lines to w.
func NewWriterLogger(debug bool, w io.Writer) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying key=value on every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger(), rotator: l.rotator}
}

func (l *Logger) Debug(v ...interface{}) {
	l.zl.Debug().Msg(join(v))
}

func (l *Logger) Info(v ...interface{}) {
	l.zl.Info().Msg(join(v))
}

func (l *Logger) Warn(v ...interface{}) {
	l.zl.Warn().Msg(join(v))
}

func (l *Logger) Error(v ...interface{}) {
	l.zl.Error().Msg(join(v))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.zl.Fatal().Msg(join(v))
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

func join(v []interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}
