package configure

import (
	"io"

	"github.com/sirupsen/logrus"
)

func initLogging(level string, disabled bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if disabled {
		logrus.SetOutput(io.Discard)
		return
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("log_level", level).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
