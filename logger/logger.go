package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// Init configures the shared logger. Level comes from LOG_LEVEL; unknown
// values fall back to info.
func Init(level string) {
	Logger.Out = os.Stdout

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
