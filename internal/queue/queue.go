// Package queue implements the single bounded channel that carries both
// log records and control messages (configure/flush/shutdown) from
// producer goroutines to the logger's one worker goroutine, in strict
// submission order.
package queue

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/lfq"

	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/record"
)

// Kind distinguishes the four message shapes the worker understands.
// Record carries a log record; Configure carries a partial Options to
// merge in; Flush and Shutdown carry no payload.
type Kind int

const (
	KindRecord Kind = iota
	KindConfigure
	KindFlush
	KindShutdown
)

// Message is the single envelope type the queue carries. Only the
// field matching Kind is meaningful. Completion of Flush/Shutdown is
// signaled separately by the Logger's flush barrier, not by this type.
type Message struct {
	Kind    Kind
	Record  record.Record
	Options options.Options
}

// control reports whether m must never be dropped by a backpressure
// policy: Configure, Flush and Shutdown always take effect, only
// Record may be sacrificed.
func (m Message) control() bool {
	return m.Kind != KindRecord
}

// Queue wraps an lfq MPMC queue with a blocking-wait layer, since lfq
// itself is non-blocking-only (Enqueue/Dequeue return ErrWouldBlock
// instead of parking the caller). MPMC, not MPSC, is required here: the
// DropOldest policy needs a producer goroutine to steal from the
// consumer side, concurrently with the worker's own Dequeue loop, and
// lfq documents that as safe only for its MPMC variant.
type Queue struct {
	inner *lfq.MPMC[Message]
	depth int64

	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond
}

// New builds a Queue whose underlying ring rounds capacity up to lfq's
// own minimum/power-of-2 rule.
func New(capacity int) *Queue {
	q := &Queue{inner: lfq.NewMPMC[Message](capacity)}
	q.notEmpty.L = &q.mu
	q.notFull.L = &q.mu
	return q
}

// Cap returns the underlying ring's actual capacity.
func (q *Queue) Cap() int { return q.inner.Cap() }

// Len returns the number of messages currently queued. Approximate
// under concurrent access, suitable only for depth/utilization
// reporting, never for correctness decisions.
func (q *Queue) Len() int { return int(atomic.LoadInt64(&q.depth)) }

// tryEnqueue attempts a single non-blocking push and, on success, wakes
// one blocked dequeuer.
func (q *Queue) tryEnqueue(m Message) bool {
	if err := q.inner.Enqueue(&m); err != nil {
		return false
	}
	atomic.AddInt64(&q.depth, 1)
	q.mu.Lock()
	q.notEmpty.Signal()
	q.mu.Unlock()
	return true
}

// tryDequeue attempts a single non-blocking pop and, on success, wakes
// one blocked enqueuer waiting for room.
func (q *Queue) tryDequeue() (Message, bool) {
	m, err := q.inner.Dequeue()
	if err != nil {
		return Message{}, false
	}
	atomic.AddInt64(&q.depth, -1)
	q.mu.Lock()
	q.notFull.Signal()
	q.mu.Unlock()
	return m, true
}

// SubmitBlocking pushes m, parking the caller until room appears. Used
// directly by the Block policy and as the always-used fallback for
// control messages under every other policy.
func (q *Queue) SubmitBlocking(m Message) {
	if q.tryEnqueue(m) {
		return
	}
	q.mu.Lock()
	for !q.tryEnqueueLocked(m) {
		q.notFull.Wait()
	}
	q.mu.Unlock()
}

// tryEnqueueLocked is tryEnqueue's body reused under q.mu so the Wait
// loop doesn't release and reacquire the lock on every spin; lfq's own
// Enqueue is safe to call while holding an unrelated mutex since it
// never blocks.
func (q *Queue) tryEnqueueLocked(m Message) bool {
	if err := q.inner.Enqueue(&m); err != nil {
		return false
	}
	atomic.AddInt64(&q.depth, 1)
	q.notEmpty.Signal()
	return true
}

// Submit pushes m according to policy. Control messages (Configure,
// Flush, Shutdown) always fall back to a blocking send regardless of
// policy: they must never be dropped or reordered relative to the
// records submitted around them. Only Record messages are subject to
// DropOldest/DropCurrent. Reports whether m ended up enqueued (true) or
// was dropped (false) under DropCurrent, or under DropOldest when the
// retry after stealing a victim also fails.
func (q *Queue) Submit(m Message, policy options.BackpressurePolicy) bool {
	if q.tryEnqueue(m) {
		return true
	}
	if m.control() {
		q.SubmitBlocking(m)
		return true
	}
	switch policy {
	case options.DropOldest:
		// Steal the oldest queued message to make room. If the victim
		// happens to be a control message, put it straight back with a
		// blocking send instead of discarding it, then retry our own
		// send once.
		if victim, ok := q.tryDequeue(); ok && victim.control() {
			q.SubmitBlocking(victim)
		}
		return q.tryEnqueue(m)
	case options.DropCurrent:
		return false
	default: // Block
		q.SubmitBlocking(m)
		return true
	}
}

// Dequeue blocks until a message is available and returns it. The
// worker goroutine is the queue's sole caller.
func (q *Queue) Dequeue() Message {
	if m, ok := q.tryDequeue(); ok {
		return m
	}
	q.mu.Lock()
	for {
		if m, ok := q.tryDequeueLocked(); ok {
			q.mu.Unlock()
			return m
		}
		q.notEmpty.Wait()
	}
}

func (q *Queue) tryDequeueLocked() (Message, bool) {
	m, err := q.inner.Dequeue()
	if err != nil {
		return Message{}, false
	}
	atomic.AddInt64(&q.depth, -1)
	q.notFull.Signal()
	return m, true
}

// NewRecord builds a Record envelope.
func NewRecord(r record.Record) Message {
	return Message{Kind: KindRecord, Record: r}
}

// NewConfigure builds a Configure envelope.
func NewConfigure(o options.Options) Message {
	return Message{Kind: KindConfigure, Options: o}
}

// NewFlush builds a Flush envelope.
func NewFlush() Message {
	return Message{Kind: KindFlush}
}

// NewShutdown builds a Shutdown envelope.
func NewShutdown() Message {
	return Message{Kind: KindShutdown}
}
