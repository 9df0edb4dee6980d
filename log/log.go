// Package log wraps logrus behind package-level helpers so callers do not
// carry a logger around.
package log

import "github.com/sirupsen/logrus"

var logger = logrus.New()

func init() {
	logger.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	}
}

// SetDebug switches the log level between debug and info.
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// WithField returns an entry carrying one structured field.
func WithField(key string, value any) *logrus.Entry {
	return logger.WithField(key, value)
}

// WithError returns an entry carrying an error field.
func WithError(err error) *logrus.Entry {
	return logger.WithError(err)
}

func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Debug(args ...any)                 { logger.Debugln(args...) }

func Infof(format string, args ...any) { logger.Infof(format, args...) }
func Info(args ...any)                 { logger.Infoln(args...) }

func Warnf(format string, args ...any) { logger.Warnf(format, args...) }
func Warn(args ...any)                 { logger.Warnln(args...) }

func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Error(args ...any)                 { logger.Errorln(args...) }

func Fatalf(format string, args ...any) { logger.Fatalf(format, args...) }
func Fatal(args ...any)                 { logger.Fatalln(args...) }
