// Package logflow is an asynchronous structured logging pipeline: a
// non-blocking producer API feeding a bounded queue drained by a single
// worker goroutine, which filters, formats, and dispatches each record
// to the attached transports.
package logflow

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mdzesseis/logflow/internal/diagnostics"
	"github.com/mdzesseis/logflow/internal/metrics"
	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/pipeline"
	"github.com/mdzesseis/logflow/internal/queue"
	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/transport"
)

// Logger is the pipeline's public facade. A Logger owns one worker
// goroutine, one bounded queue shared by records and control messages,
// and Shared State (current configuration, pre-transport buffer,
// effective-severity cache) guarded by a single RWMutex, matching the
// one-worker-one-lock design this project's dispatcher used for its
// own sink fan-out.
type Logger struct {
	mu    sync.RWMutex
	state *pipeline.State

	q      *queue.Queue
	policy options.BackpressurePolicy

	wg      sync.WaitGroup
	closed  atomic.Bool

	barrier flushBarrier
}

// New builds a Logger from opts (nil for all-default) and immediately
// starts its worker goroutine.
func New(opts *options.Options) *Logger {
	o := options.Default()
	if opts != nil {
		o = options.Merge(*opts, options.Default(), options.Default())
		if opts.ChannelCapacity > 0 {
			o.ChannelCapacity = opts.ChannelCapacity
		}
		o.BackpressurePolicy = opts.BackpressurePolicy
	}

	l := &Logger{
		state:  pipeline.New(o),
		q:      queue.New(o.ChannelCapacity),
		policy: o.BackpressurePolicy,
	}
	l.barrier.cond = sync.NewCond(&l.barrier.mu)

	l.wg.Add(1)
	go l.run()
	return l
}

// run is the Logger's sole worker goroutine: dequeue, process under the
// write lock, repeat until a Shutdown message is processed.
func (l *Logger) run() {
	defer l.wg.Done()
	for {
		msg := l.q.Dequeue()

		l.mu.Lock()
		switch msg.Kind {
		case queue.KindRecord:
			l.state.ProcessRecord(msg.Record)
		case queue.KindConfigure:
			l.state.Configure(msg.Options)
		case queue.KindFlush:
			start := time.Now()
			l.state.Flush()
			metrics.ObserveFlushLatency(time.Since(start))
		case queue.KindShutdown:
			l.state.Shutdown()
		}
		metrics.SetQueueDepth(l.q.Len(), l.q.Cap())
		l.mu.Unlock()

		if msg.Kind == queue.KindFlush {
			l.barrier.complete()
		}
		if msg.Kind == queue.KindShutdown {
			l.barrier.closeAll()
			return
		}
	}
}

// Submit enqueues r according to the logger's configured backpressure
// policy. It never blocks the caller indefinitely under DropOldest or
// DropCurrent, and never returns an error: submission failures are
// reported to internal/diagnostics, never to the caller, per this
// pipeline's fire-and-forget producer contract.
func (l *Logger) Submit(r record.Record) {
	if l.closed.Load() {
		diagnostics.Warn("submit_after_close", diagnostics.Fields{})
		return
	}
	if !l.q.Submit(queue.NewRecord(r), l.policy) {
		metrics.RecordDrop(l.policy.String())
		diagnostics.Warn("record_dropped", diagnostics.Fields{"policy": l.policy.String()})
	}
}

// SubmitBlocking enqueues r, parking the caller until room is
// available regardless of the configured backpressure policy.
func (l *Logger) SubmitBlocking(r record.Record) {
	if l.closed.Load() {
		diagnostics.Warn("submit_after_close", diagnostics.Fields{})
		return
	}
	l.q.SubmitBlocking(queue.NewRecord(r))
}

// Configure submits a Configure control message, merged against the
// current configuration by the worker in submission order relative to
// any in-flight records. ChannelCapacity and BackpressurePolicy are
// immutable after construction and are ignored here.
func (l *Logger) Configure(opts options.Options) {
	if l.closed.Load() {
		return
	}
	l.q.SubmitBlocking(queue.NewConfigure(opts))
}

// AddTransport wraps t (adopting any level or format override t itself
// declares through LevelProvider/FormatProvider) and attaches it; see
// AddWrappedTransport.
func (l *Logger) AddTransport(t transport.Transport) transport.Handle {
	return l.AddWrappedTransport(transport.Wrap(t))
}

// AddWrappedTransport attaches w under the write lock and returns its
// handle synchronously. Unlike Submit/Configure, transport attachment
// is never routed through the worker queue: the caller needs the handle
// back immediately, and there is no ordering requirement against
// in-flight records that a direct mutation would violate.
func (l *Logger) AddWrappedTransport(w transport.Wrapper) transport.Handle {
	h := transport.NextHandle()
	l.mu.Lock()
	l.state.AddTransport(transport.Entry{Handle: h, Wrapper: w})
	l.mu.Unlock()
	diagnostics.Debug("transport_added", diagnostics.Fields{"handle": h})
	return h
}

// RemoveTransport detaches the transport identified by h. Reports
// whether a transport with that handle was attached.
func (l *Logger) RemoveTransport(h transport.Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok := l.state.RemoveTransport(h)
	if ok {
		diagnostics.Debug("transport_removed", diagnostics.Fields{"handle": h})
	}
	return ok
}

// Flush drains the pre-transport buffer into the attached transports
// (leaving it in place when none is attached) and flushes every attached
// transport, blocking until that work (and everything submitted before
// it) has been processed by the worker. It always returns nil: per this
// pipeline's error handling design, a transport's flush failure is
// diagnostic-only, never surfaced to the caller.
func (l *Logger) Flush() error {
	if l.closed.Load() {
		return nil
	}
	ticket := l.barrier.request()
	l.q.SubmitBlocking(queue.NewFlush())
	l.barrier.wait(ticket)
	return nil
}

// Close submits a Shutdown control message, waits for the worker
// goroutine to exit, and wakes any Flush callers still waiting on the
// barrier. Idempotent: a second Close is a no-op.
func (l *Logger) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}
	l.q.SubmitBlocking(queue.NewShutdown())
	l.wg.Wait()
}

// Query runs the query engine against the current Shared State: scan
// the pre-transport buffer, query every transport (aborting on the
// first error), merge, sort by timestamp, paginate, and optionally
// project fields.
func (l *Logger) Query(q LogQuery) ([]record.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	results, err := pipeline.Query(l.state, q.toTransportQuery())
	if err != nil {
		metrics.RecordTransportError("query")
	}
	return results, err
}

// QueueUtilization returns the fraction (0.0-1.0) of the bounded
// queue's capacity currently occupied, for feeding an external
// queue-health monitor.
func (l *Logger) QueueUtilization() float64 {
	capacity := l.q.Cap()
	if capacity == 0 {
		return 0
	}
	return float64(l.q.Len()) / float64(capacity)
}

// Enabled reports whether a record at level could reach at least one
// attached transport, using the same effective-severity cache Submit's
// hot path consults. Facades (such as the slog adapter) call this to
// decide whether to construct a record at all.
func (l *Logger) Enabled(level string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Admits(record.Record{Level: level})
}

// flushBarrier implements the flush-completion protocol: Flush bumps a
// request ticket and blocks until the worker's completed counter
// reaches it; the worker bumps completed and broadcasts after
// processing each Flush message; Close broadcasts once more with
// closed=true so no waiter blocks forever past shutdown.
type flushBarrier struct {
	mu        sync.Mutex
	cond      *sync.Cond
	requested uint64
	completed uint64
	closed    bool
}

func (b *flushBarrier) request() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requested++
	return b.requested
}

func (b *flushBarrier) wait(ticket uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.completed < ticket && !b.closed {
		b.cond.Wait()
	}
}

func (b *flushBarrier) complete() {
	b.mu.Lock()
	b.completed++
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *flushBarrier) closeAll() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}
