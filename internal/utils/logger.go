package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOutput mirrors the log into a rotated file. File lines are always JSON.
type FileOutput struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func (f *FileOutput) writer() io.Writer {
	return &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAge:     f.MaxAgeDays,
		Compress:   true,
	}
}

// NewLogger creates a new configured logger writing to stdout, and to file when set
func NewLogger(level, format string, file *FileOutput) zerolog.Logger {
	if file == nil || file.Path == "" {
		return newLogger(os.Stdout, level, format)
	}

	if err := os.MkdirAll(filepath.Dir(file.Path), 0755); err != nil {
		logger := newLogger(os.Stdout, level, format)
		logger.Warn().Err(err).Str("path", file.Path).Msg("Could not create log directory, logging to stdout only")
		return logger
	}
	return newLogger(os.Stdout, level, format, file.writer())
}

// newLogger writes to out in the given format and copies JSON lines to mirrors
func newLogger(out io.Writer, level, format string, mirrors ...io.Writer) zerolog.Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if len(mirrors) > 0 {
		out = zerolog.MultiLevelWriter(append([]io.Writer{out}, mirrors...)...)
	}

	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(logLevel).With().Timestamp().Logger()
}
