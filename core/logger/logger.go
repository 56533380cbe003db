package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment variables read when the logger is first used.
const (
	EnvLoggingLevel  = "FASTREFLECT_LOGGING_LEVEL"
	EnvLoggingFormat = "FASTREFLECT_LOGGING_FORMAT"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const (
	defaultLevel           = "warning"
	defaultTimestampFormat = "2006-01-02 15:04:05.000 MST"
)

var (
	lg   *logrus.Logger
	once sync.Once
)

// Logger returns the process-wide logger
func Logger() *logrus.Logger {
	once.Do(func() {
		lg = logrus.New()
		lg.SetOutput(os.Stderr)

		if err := apply(lg, os.Getenv(EnvLoggingLevel), os.Getenv(EnvLoggingFormat)); err != nil {
			lg.SetLevel(logrus.WarnLevel)
			lg.WithError(err).Warn("falling back to the default logging settings")
		}
	})

	return lg
}

// Configure sets the level and the format of the process-wide logger. Empty values
// select the defaults.
func Configure(level, format string) error {
	return apply(Logger(), level, format)
}

func apply(l *logrus.Logger, level, format string) error {
	if level == "" {
		level = defaultLevel
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing logging level: %w", err)
	}

	formatter, err := newFormatter(format)
	if err != nil {
		return err
	}

	l.SetLevel(lvl)
	l.SetFormatter(formatter)

	return nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: defaultTimestampFormat,
		}, nil
	case FormatJSON:
		return &logrus.JSONFormatter{TimestampFormat: defaultTimestampFormat}, nil
	default:
		return nil, fmt.Errorf("unknown logging format '%s'", format)
	}
}
