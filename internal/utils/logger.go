package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger. Call InitLogger before use.
var Logger = logrus.New()

// serviceHook prefixes every entry with the service name so log lines from
// different deployments can share one aggregation stream.
type serviceHook struct {
	name string
}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.name + "] " + entry.Message
	return nil
}

// InitLogger configures the global logger: stdout output, full timestamps
// and a level taken from LOG_LEVEL (default info).
func InitLogger(serviceName string) {
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	raw := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		raw = "info"
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		Logger.Warnf("invalid LOG_LEVEL %q, defaulting to info", raw)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	Logger.AddHook(&serviceHook{name: serviceName})
}
