// Package diagnostics is the pipeline's own internal error channel:
// everything that can't be reported through the public API (a transport
// flush failure, a dropped record) is logged
// here, one line per event, instead of being silently swallowed.
package diagnostics

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

func instance() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.SetLevel(logrus.DebugLevel)
	})
	return logger
}

// Fields is re-exported so callers don't need their own logrus import.
type Fields = logrus.Fields

const tag = "logflow"

// Error reports a failure the caller cannot otherwise surface, e.g. a
// transport's Flush/Query returning an error.
func Error(event string, fields Fields, err error) {
	e := instance().WithFields(fields).WithField("tag", tag)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(event)
}

// Warn reports a degraded-but-recovered condition, e.g. a dropped
// record under DropCurrent/DropOldest.
func Warn(event string, fields Fields) {
	instance().WithFields(fields).WithField("tag", tag).Warn(event)
}

// Debug reports routine lifecycle events (transport attach/detach) at
// debug level.
func Debug(event string, fields Fields) {
	instance().WithFields(fields).WithField("tag", tag).Debug(event)
}
