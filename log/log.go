// Package log provides loggers for patch graphs.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

// Logger is a global interface for patch loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	WithField(key string, value interface{}) *logrus.Entry
}

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("PATCH_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance. Debug level is enabled when
// PATCH_DEBUG environment variable is set to true.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// SetDebug changes the level of loggers returned by GetLogger.
func SetDebug(enabled bool) {
	debug = enabled
}

// EnableDebug sets debug level to logger, if the logger has levels.
func EnableDebug(l Logger) {
	if ll, ok := l.(interface{ SetLevel(logrus.Level) }); ok {
		ll.SetLevel(logrus.DebugLevel)
	}
}

// Silent returns a logger which discards everything.
func Silent() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
