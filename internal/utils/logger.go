package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logrus instance. InitLogger must run
// before anything else logs through it.
var Logger = logrus.New()

// serviceNameHook stamps the service name onto every entry so the
// enrollment service stays identifiable in a shared log stream.
type serviceNameHook struct {
	name string
}

func (h *serviceNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.name + "] " + entry.Message
	return nil
}

// InitLogger configures level, formatter, and the service-name hook.
// LOG_LEVEL accepts any logrus level name; unset or invalid means info.
func InitLogger(serviceName string) {
	Logger.SetOutput(os.Stdout)
	Logger.SetLevel(resolveLevel())
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Logger.AddHook(&serviceNameHook{name: serviceName})
}

func resolveLevel() logrus.Level {
	raw := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", raw)
		return logrus.InfoLevel
	}
	return level
}
