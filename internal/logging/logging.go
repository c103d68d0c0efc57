package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// InitializeLogger initializes the global logger with standard configurations.
func InitializeLogger(level string) {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{}) // Use JSON format for structured logs
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// SetOutput redirects the global logger, e.g. to stderr when stdout carries command output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Logger returns the global logger.
func Logger() *logrus.Logger {
	return log
}

// Info logs informational messages.
func Info(message string, fields map[string]interface{}) {
	log.WithFields(fields).Info(message)
}

// Warn logs warning messages.
func Warn(message string, fields map[string]interface{}) {
	log.WithFields(fields).Warn(message)
}

// Error logs error messages.
func Error(message string, fields map[string]interface{}) {
	log.WithFields(fields).Error(message)
}

// Debug logs debug messages.
func Debug(message string, fields map[string]interface{}) {
	log.WithFields(fields).Debug(message)
}
