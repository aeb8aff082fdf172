package logger

import (
	"os"
	"strings"

	"github.com/sigalit/guide-scheduler-api/pkg/config"
	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger from application config: JSON
// output in production/staging, colored text elsewhere.
func Init(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		logrus.Warnf("invalid log level %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	switch strings.ToLower(cfg.Environment) {
	case "production", "staging":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}
