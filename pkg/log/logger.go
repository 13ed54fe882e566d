package log

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	ecerrors "github.com/YuminosukeSato/eclyon/pkg/errors"
)

// SetupLogger configures the process-wide zerolog logger writing JSON to stdout.
func SetupLogger(loglevel string) error {
	return SetupLoggerWithWriter(loglevel, os.Stdout, false)
}

// SetupLoggerWithWriter configures the process-wide zerolog logger.
// When console is true the output is human readable (zerolog.ConsoleWriter).
func SetupLoggerWithWriter(loglevel string, w io.Writer, console bool) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}

	if console {
		w = zerolog.ConsoleWriter{Out: w}
	}
	zl := zerolog.New(w).With().Timestamp().Logger()

	p := &zerologProvider{logger: NewZerologLogger(zl)}
	p.SetLevel(level)
	SetProvider(p)
	return nil
}

// ToLogLevel parses "debug", "info", "warn" or "error".
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, ecerrors.NewValidationError("log_level", "must be one of debug, info, warn, error", level)
	}
}
