// Package console provides the demo binary's reference transport: it
// writes one level-tagged line per record through its own logrus
// instance on stdout (separate from the diagnostics instance), grounded
// on this project's own ambient logrus setup rather than introducing a
// second logging library for output formatting.
package console

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/transport"
)

// Transport writes records to stdout as one logrus entry per record; the
// output writer is not configurable. It keeps no history: Query always returns
// (nil, nil), matching the capability interface's allowance for
// transports with no queryable backlog.
type Transport struct {
	logger *logrus.Logger
}

// New returns a Transport writing to stdout with a text formatter.
func New() *Transport {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.TraceLevel)
	return &Transport{logger: logger}
}

// Log writes r as a single logrus entry, using r.Level as the logrus
// level when it names a standard one and falling back to Info.
func (t *Transport) Log(r record.Record) {
	entry := t.logger.WithFields(logrus.Fields(r.Meta)).WithTime(r.Timestamp)
	lvl, err := logrus.ParseLevel(r.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	entry.Log(lvl, r.Message)
}

// Flush is a no-op: logrus writes synchronously, so there is nothing
// to flush.
func (t *Transport) Flush() error { return nil }

// Query always returns (nil, nil): the console transport keeps no
// queryable history.
func (t *Transport) Query(q transport.Query) ([]record.Record, error) { return nil, nil }
