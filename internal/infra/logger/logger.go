// internal/infra/logger/logger.go
package logger

import (
	"os"
	"strings"

	"cadence_engine/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger shared by the generation services and the
// scheduler.
var Log = logrus.New()

// Init configures Log from the application configuration. Called once from
// main before any service is constructed.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Unknown log level '%s', falling back to 'info': %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	switch strings.ToLower(cfg.Environment) {
	case "production", "staging":
		// Machine-readable lines for the log pipeline.
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Log.Infof("Logger initialized at level %s for environment %s.", Log.GetLevel(), cfg.Environment)
}

// Get returns the configured process logger.
func Get() *logrus.Logger {
	return Log
}
