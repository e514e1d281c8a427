package logger

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

var (
	defaultsMu     sync.Mutex
	configuredFmt  string
	configuredWant string
)

// SetDefaults fixes the format and level used by subsequent New calls.
// ENVIRONMENT and LOG_LEVEL still win so operators can override a deployed
// configuration without editing it.
func SetDefaults(level, format string) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	configuredWant = level
	configuredFmt = format
}

func configuredDefaults() (level, format string) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	return configuredWant, configuredFmt
}

func New() *Logger {
	base := logrus.New()
	cfgLevel, cfgFormat := configuredDefaults()

	// Local env = pretty console; others = JSON
	format := cfgFormat
	if env := os.Getenv("ENVIRONMENT"); env != "" && env != "local" {
		format = "json"
	} else if format == "" {
		format = "text"
	}
	if format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(os.Stderr)

	// Log level
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = cfgLevel
	}
	switch level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// WithRun attaches the batch run identifier so every record-level message can
// be correlated back to one invocation.
func (l *Logger) WithRun(runID string) *logrus.Entry {
	return l.WithField("run_id", runID)
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
