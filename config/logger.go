package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger configures the shared logrus instance. Handlers and the
// processing pipeline log through this.
func InitLogger() {
	Log = logrus.New()

	// Set formatter to JSON
	Log.SetFormatter(&logrus.JSONFormatter{})

	// Set output to stdout (default)
	Log.SetOutput(os.Stdout)

	// Set log level - configurable via LOG_LEVEL
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}

// Logger returns the shared instance, initializing it on first use so tests
// and one-shot commands do not have to call InitLogger themselves.
func Logger() *logrus.Logger {
	if Log == nil {
		InitLogger()
	}
	return Log
}
