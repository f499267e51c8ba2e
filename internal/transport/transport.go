// Package transport defines the capability interfaces external log
// destinations implement, plus the wrapper and handle types the logger
// uses to track them.
package transport

import (
	"sync/atomic"
	"time"

	"github.com/mdzesseis/logflow/internal/record"
)

// Query describes a request against a transport's or the pipeline's
// buffered history.
type Query struct {
	From, Until time.Time
	Levels      []string
	Start       int
	Limit       int
	Descending  bool
	Fields      []string
}

// Transport is the capability an external log destination must
// implement to be attached to a logger. Query may return (nil, nil) for
// transports that keep no queryable history.
type Transport interface {
	Log(r record.Record)
	Flush() error
	Query(q Query) ([]record.Record, error)
}

// LevelProvider is an optional capability: a transport that wants its
// own severity floor, independent of the logger-wide level, implements
// this in addition to Transport.
type LevelProvider interface {
	Level() (string, bool)
}

// FormatProvider is an optional capability: a transport that wants its
// own format chain, independent of the logger-wide format, implements
// this in addition to Transport.
type FormatProvider interface {
	TransportFormat() (Format, bool)
}

// Format transforms a record before it reaches a transport. Returning
// ok=false suppresses the record for that transport entirely.
type Format interface {
	Transform(r record.Record) (record.Record, bool)
}

// FormatFunc adapts a plain function to Format.
type FormatFunc func(record.Record) (record.Record, bool)

// Transform implements Format.
func (f FormatFunc) Transform(r record.Record) (record.Record, bool) { return f(r) }

// Handle identifies an attached transport for the lifetime of a
// process. Handles are minted from a monotonic counter and carry no
// reference to the transport itself, so there is no way to construct a
// cycle between a handle and what it names.
type Handle int64

var handleCounter int64

// NextHandle mints a new, process-wide unique handle.
func NextHandle() Handle {
	return Handle(atomic.AddInt64(&handleCounter, 1))
}

// Wrapper pairs a transport with an optional level override and an
// optional format override.
type Wrapper struct {
	Transport Transport
	Level     string
	HasLevel  bool
	Format    Format
	HasFormat bool
}

// Wrap builds a Wrapper around t. Its only overrides are the level or
// format t itself declares through LevelProvider/FormatProvider; a t
// implementing neither gets a Wrapper with no overrides.
func Wrap(t Transport) Wrapper {
	w := Wrapper{Transport: t}
	if lp, ok := t.(LevelProvider); ok {
		if lvl, has := lp.Level(); has {
			w.Level, w.HasLevel = lvl, true
		}
	}
	if fp, ok := t.(FormatProvider); ok {
		if f, has := fp.TransportFormat(); has {
			w.Format, w.HasFormat = f, true
		}
	}
	return w
}

// WithLevel returns a copy of w overriding its level.
func (w Wrapper) WithLevel(level string) Wrapper {
	w.Level, w.HasLevel = level, true
	return w
}

// WithFormat returns a copy of w overriding its format.
func (w Wrapper) WithFormat(f Format) Wrapper {
	w.Format, w.HasFormat = f, true
	return w
}

// Entry is a {Handle, Wrapper} pair, the unit stored in a logger's
// transport list and iterated in configured order during dispatch.
type Entry struct {
	Handle  Handle
	Wrapper Wrapper
}
