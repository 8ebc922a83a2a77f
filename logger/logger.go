package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once          sync.Once
	projectLogger *logrus.Logger
)

// GetProjectLogger returns the logger shared by every package in the project.
func GetProjectLogger() *logrus.Logger {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetOutput(os.Stderr)
		projectLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
		projectLogger.SetLevel(logrus.InfoLevel)
	})
	return projectLogger
}

// SetLevel parses lvl ("debug", "info", "warn", ...) and applies it.
func SetLevel(lvl string) error {
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		return err
	}
	GetProjectLogger().SetLevel(level)
	return nil
}

// SetOutput redirects log output, e.g. away from a live terminal view.
func SetOutput(w io.Writer) {
	GetProjectLogger().SetOutput(w)
}
