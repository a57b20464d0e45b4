package config

import (
	"strings"

	logrus "github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger. Unknown levels fall back
// to info.
func InitLogger(s LogSettings) {
	if strings.EqualFold(s.Format, "text") {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(s.Level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", s.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
