package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// ErrorLogger stays at info level because logrus routes Printf through
// the info hook; the split is by destination, not severity.
var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.InfoLevel)
)

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(level)
	return l
}

// InitLogger rebuilds the loggers; kept as the explicit boot hook so
// main controls when formatting is configured.
func InitLogger() {
	InfoLogger = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.InfoLevel)
}
