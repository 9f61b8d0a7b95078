// Package logging provides the leveled logger used across dvstamp: a
// human-readable console stream (errors on stderr) and an optional JSON file
// sink, both fed by one zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/dvstamp/internal/config"
	"github.com/backmassage/dvstamp/internal/term"
)

// successField marks Info events that the console renders as SUCCESS.
const successField = "success"

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	zl    zerolog.Logger
	file  *os.File
	mu    *sync.Mutex
	owner bool // only the root logger closes the file
}

// NewLogger initializes colors from cfg and optionally opens cfg.LogFile.
// Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{consoleSplit(os.Stdout, os.Stderr, !term.Enabled())}
	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
		writers = append(writers, f)
	}

	l := newLogger(zerolog.MultiLevelWriter(writers...), level)
	l.file = file
	return l, nil
}

// New returns a logger writing plain console text to out (errors to errOut).
func New(out, errOut io.Writer, level zerolog.Level) *Logger {
	return newLogger(consoleSplit(out, errOut, true), level)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return newLogger(io.Discard, zerolog.Disabled)
}

func newLogger(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{
		zl:    zerolog.New(w).Level(level).With().Timestamp().Logger(),
		mu:    &sync.Mutex{},
		owner: true,
	}
}

// With returns a child logger that adds key=value to every event.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl:   l.zl.With().Str(key, value).Logger(),
		file: l.file,
		mu:   l.mu,
	}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if !l.owner {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at INFO level, shown as SUCCESS on the console.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Bool(successField, true).Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to stderr on the console.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; dropped unless the level allows it.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// DebugEnabled reports whether Debug events are emitted.
func (l *Logger) DebugEnabled() bool {
	return l.zl.GetLevel() <= zerolog.DebugLevel
}
