package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a JSON logger with the service name attached to every entry.
// Level comes from LOG_LEVEL (debug/info/warn/error), defaulting to info.
func New(service string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(level())
	logger.AddHook(&serviceHook{service: service})
	return logger
}

func level() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	entry.Data["service"] = h.service
	return nil
}
