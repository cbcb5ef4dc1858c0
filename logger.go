package accelerator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/always-cache/accelerator/config"
)

// LogEnv forces debug logging to stdout when set to a non-empty value.
const LogEnv = "ACCELERATOR_LOG"

// NewLogger creates the diagnostic logger described by the "logger.*" settings.
//
// logger.filename is "none" (or empty) to disable logging, "stdout", "stderr" or a file
// path that is appended to. logger.log_level defaults to "info".
// The returned closer releases the log file, if one was opened.
func NewLogger(settings config.Settings) (zerolog.Logger, io.Closer, error) {
	if os.Getenv(LogEnv) != "" {
		return newLogger(os.Stdout, zerolog.DebugLevel), nopCloser{}, nil
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	switch filename := settings.String("logger.filename", ""); strings.ToLower(filename) {
	case "", "none":
		return zerolog.Nop(), closer, nil
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(filepath.Clean(filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}

	level, err := zerolog.ParseLevel(strings.ToLower(settings.String("logger.log_level", "info")))
	if err != nil {
		closer.Close()
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level: %w", err)
	}
	return newLogger(w, level), closer, nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
