// Package pipeline implements the worker-side logic that turns a
// dequeued control message into effect: filtering and dispatching a
// record, merging a Configure update, or draining and flushing
// transports. It holds no goroutine of its own; the root Logger drives
// it from its single worker loop.
package pipeline

import (
	"sort"

	"github.com/mdzesseis/logflow/internal/diagnostics"
	"github.com/mdzesseis/logflow/internal/levels"
	"github.com/mdzesseis/logflow/internal/metrics"
	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/transport"
	"github.com/mdzesseis/logflow/pkg/buffer"
)

// State is the worker's view of Shared State: the current
// configuration, the pre-transport buffer, and the effective-severity
// cache derived from the configuration. The root Logger guards every
// call into State with its sync.RWMutex; State itself is not
// thread-safe on its own.
type State struct {
	Options options.Options
	Buffer  *buffer.Deque[record.Record]

	// minRequiredSeverity is the branch-free hot-path pre-filter: the
	// maximum severity (numerically) over the global level and every
	// transport's level override. A record whose severity exceeds this
	// cannot possibly pass any transport's filter and is dropped before
	// the per-transport loop runs.
	minRequiredSeverity uint8
	hasMinSeverity      bool
}

// New builds a State seeded with opts, with the buffer empty and the
// cache computed immediately.
func New(opts options.Options) *State {
	s := &State{
		Options: opts,
		Buffer:  buffer.New[record.Record](),
	}
	s.recomputeCache()
	return s
}

// recomputeCache recomputes minRequiredSeverity from the current
// Options: the global level's severity, maxed against every attached
// transport's level override. Called after construction and after every
// Configure/AddTransport/RemoveTransport.
func (s *State) recomputeCache() {
	reg := s.Options.Levels
	max, ok := severityOf(reg, s.Options.Level)
	for _, e := range s.Options.Transports {
		if !e.Wrapper.HasLevel {
			continue
		}
		if sev, ok2 := severityOf(reg, e.Wrapper.Level); ok2 {
			if !ok || sev > max {
				max, ok = sev, true
			}
		}
	}
	s.minRequiredSeverity, s.hasMinSeverity = max, ok
}

func severityOf(reg levels.Registry, name string) (uint8, bool) {
	return reg.Severity(name)
}

// Admits reports whether r's level could possibly reach any attached
// transport, given the cached minimum required severity. A false result
// means the record is dropped before any per-transport work happens.
// A level name absent from the registry can never be admitted to any
// transport, so an unresolved severity lookup is treated as a miss.
func (s *State) Admits(r record.Record) bool {
	if !s.hasMinSeverity {
		return true
	}
	sev, ok := s.Options.Levels.Severity(r.Level)
	if !ok {
		return false
	}
	return sev <= s.minRequiredSeverity
}

// ProcessRecord dispatches r, unless r is degenerate or fails the
// severity pre-filter. With no transport attached yet, r is appended to
// the pre-transport buffer instead of being drained and dispatched to
// nobody; the buffer is only drained once a transport exists to receive
// it.
func (s *State) ProcessRecord(r record.Record) {
	if r.IsZero() || !s.Admits(r) {
		return
	}
	if len(s.Options.Transports) == 0 {
		s.Buffer.Push(r)
		diagnostics.Warn("buffering_without_transport", diagnostics.Fields{
			"buffered": s.Buffer.Len(),
			"message":  r.Message,
		})
		return
	}
	for _, buffered := range s.Buffer.DrainAll() {
		s.dispatch(buffered)
	}
	s.dispatch(r)
}

// dispatch sends r to every transport whose own level/format allow it.
// A transport with no level override is gated by the logger-wide level
// instead of passing unfiltered; if either side's severity cannot be
// resolved, the transport is skipped rather than logged to.
func (s *State) dispatch(r record.Record) {
	for _, e := range s.Options.Transports {
		w := e.Wrapper
		effectiveLevel, hasEffectiveLevel := w.Level, w.HasLevel
		if !hasEffectiveLevel {
			effectiveLevel, hasEffectiveLevel = s.Options.Level, s.Options.HasLevel
		}
		if hasEffectiveLevel {
			sev, ok := s.Options.Levels.Severity(r.Level)
			limit, ok2 := s.Options.Levels.Severity(effectiveLevel)
			if !ok || !ok2 {
				continue
			}
			if sev > limit {
				continue
			}
		}
		format, hasFormat := w.Format, w.HasFormat
		if !hasFormat {
			format, hasFormat = s.Options.Format, s.Options.HasFormat
		}
		out := r
		if hasFormat {
			transformed, ok := format.Transform(r)
			if !ok {
				continue
			}
			out = transformed
		}
		w.Transport.Log(out)
	}
}

// Configure merges incoming over the current options (per
// options.Merge's fallback chain), recomputes the cache, and drains the
// buffer if the merge attached the first transport.
func (s *State) Configure(incoming options.Options) {
	had := len(s.Options.Transports) > 0
	s.Options = options.Merge(incoming, s.Options, options.Default())
	s.recomputeCache()
	if !had && len(s.Options.Transports) > 0 {
		for _, buffered := range s.Buffer.DrainAll() {
			s.dispatch(buffered)
		}
	}
}

// AddTransport appends e to the transport list and recomputes the
// cache. Unlike Configure, this is a direct Shared State mutation
// (never routed through the queue); it is still the worker's State
// being mutated, so the caller must hold the write lock.
func (s *State) AddTransport(e transport.Entry) {
	s.Options.Transports = append(s.Options.Transports, e)
	s.recomputeCache()
	for _, buffered := range s.Buffer.DrainAll() {
		s.dispatch(buffered)
	}
}

// RemoveTransport drops the entry matching h, if any, and recomputes
// the cache. Reports whether an entry was found.
func (s *State) RemoveTransport(h transport.Handle) bool {
	for i, e := range s.Options.Transports {
		if e.Handle == h {
			s.Options.Transports = append(s.Options.Transports[:i:i], s.Options.Transports[i+1:]...)
			s.recomputeCache()
			return true
		}
	}
	return false
}

// Flush drains the buffer and flushes every transport, logging (but not
// propagating) any transport error. With no transport attached, there
// is nothing to flush to, so the buffer is left untouched rather than
// drained to nobody.
func (s *State) Flush() {
	if len(s.Options.Transports) > 0 {
		for _, buffered := range s.Buffer.DrainAll() {
			s.dispatch(buffered)
		}
	}
	for _, e := range s.Options.Transports {
		if err := e.Wrapper.Transport.Flush(); err != nil {
			metrics.RecordTransportError("flush")
			diagnostics.Error("transport_flush_failed", diagnostics.Fields{
				"handle": e.Handle,
			}, err)
		}
	}
}

// Shutdown drains the buffer one last time. Unflushed transports are
// left as-is; Close is expected to call Flush first if that is wanted.
func (s *State) Shutdown() {
	for _, buffered := range s.Buffer.DrainAll() {
		s.dispatch(buffered)
	}
}

// Query runs the five-step query procedure: scan the pre-transport
// buffer, query every transport (aborting on the first error), merge
// the results, sort by timestamp, then paginate and project.
func Query(s *State, q transport.Query) ([]record.Record, error) {
	var all []record.Record

	for _, r := range s.Buffer.Snapshot() {
		if matches(r, q) {
			all = append(all, r)
		}
	}

	for _, e := range s.Options.Transports {
		results, err := e.Wrapper.Transport.Query(q)
		if err != nil {
			diagnostics.Error("transport_query_failed", diagnostics.Fields{
				"handle": e.Handle,
			}, err)
			return nil, err
		}
		for _, r := range results {
			if matches(r, q) {
				all = append(all, r)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if q.Descending {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		return all[i].Timestamp.Before(all[j].Timestamp)
	})

	all = paginate(all, q.Start, q.Limit)

	if len(q.Fields) > 0 {
		for i := range all {
			all[i] = project(all[i], q.Fields)
		}
	}

	return all, nil
}

func matches(r record.Record, q transport.Query) bool {
	if !q.From.IsZero() && r.Timestamp.Before(q.From) {
		return false
	}
	if !q.Until.IsZero() && r.Timestamp.After(q.Until) {
		return false
	}
	if len(q.Levels) > 0 {
		found := false
		for _, lvl := range q.Levels {
			if lvl == r.Level {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func paginate(all []record.Record, start, limit int) []record.Record {
	if start < 0 {
		start = 0
	}
	if start >= len(all) {
		return nil
	}
	all = all[start:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func project(r record.Record, fields []string) record.Record {
	if r.Meta == nil {
		return r
	}
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f] = true
	}
	out := r.Clone()
	for k := range out.Meta {
		if !keep[k] {
			delete(out.Meta, k)
		}
	}
	return out
}
