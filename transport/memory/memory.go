// Package memory provides an in-process recording transport used
// across the test suite, filling the role this project's original
// MockSink/TestTransport fixtures played for the dropped sink layer.
package memory

import (
	"sync"

	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/transport"
)

// Transport records every record it receives, in order, and answers
// queries against that recording. It has no capacity limit and no
// external side effects, making it suitable for tests that need to
// assert on exactly what a logger dispatched.
type Transport struct {
	mu      sync.Mutex
	records []record.Record
}

// New returns an empty recording Transport.
func New() *Transport {
	return &Transport{}
}

// Log appends r to the recording.
func (t *Transport) Log(r record.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r.Clone())
}

// Flush is a no-op: there is nothing buffered beyond the recording
// itself, which Log already appended to synchronously.
func (t *Transport) Flush() error { return nil }

// Query filters the recording by q.Levels/q.From/q.Until; pagination
// and projection are the caller's (internal/pipeline's) responsibility,
// mirrored here only for From/Until/Levels since those are the fields a
// transport is expected to apply itself before returning results.
func (t *Transport) Query(q transport.Query) ([]record.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]record.Record, 0, len(t.records))
	for _, r := range t.records {
		if !q.From.IsZero() && r.Timestamp.Before(q.From) {
			continue
		}
		if !q.Until.IsZero() && r.Timestamp.After(q.Until) {
			continue
		}
		if len(q.Levels) > 0 && !containsLevel(q.Levels, r.Level) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Records returns a snapshot of everything recorded so far, oldest
// first.
func (t *Transport) Records() []record.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]record.Record, len(t.records))
	copy(out, t.records)
	return out
}

func containsLevel(levels []string, level string) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}
