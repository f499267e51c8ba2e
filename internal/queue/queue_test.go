package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/record"
)

func TestSubmitBlockingRoundTrip(t *testing.T) {
	q := New(4)
	q.SubmitBlocking(NewRecord(record.New("info", "hello", nil)))

	m := q.Dequeue()
	assert.Equal(t, KindRecord, m.Kind)
	assert.Equal(t, "hello", m.Record.Message)
}

func TestSubmitDropCurrentWhenFull(t *testing.T) {
	q := New(1)
	require.True(t, q.Submit(NewRecord(record.New("info", "first", nil)), options.DropCurrent))

	ok := q.Submit(NewRecord(record.New("info", "second", nil)), options.DropCurrent)
	assert.False(t, ok, "second record should be dropped when the queue is full")

	m := q.Dequeue()
	assert.Equal(t, "first", m.Record.Message, "the original record should still be the one delivered")
}

func TestSubmitDropOldestStealsRoomForNewRecord(t *testing.T) {
	q := New(1)
	require.True(t, q.Submit(NewRecord(record.New("info", "oldest", nil)), options.DropOldest))

	ok := q.Submit(NewRecord(record.New("info", "newest", nil)), options.DropOldest)
	assert.True(t, ok)

	m := q.Dequeue()
	assert.Equal(t, "newest", m.Record.Message, "DropOldest should make room by evicting the queued record")
}

func TestControlMessagesNeverDroppedUnderDropCurrent(t *testing.T) {
	q := New(1)
	require.True(t, q.Submit(NewRecord(record.New("info", "occupant", nil)), options.DropCurrent))

	done := make(chan struct{})
	go func() {
		ok := q.Submit(NewFlush(), options.DropCurrent)
		assert.True(t, ok)
		close(done)
	}()

	// Drain the occupant so the blocking control-message send can land.
	m := q.Dequeue()
	assert.Equal(t, KindRecord, m.Kind)

	flush := q.Dequeue()
	assert.Equal(t, KindFlush, flush.Kind)
	<-done
}

func TestLenTracksEnqueueAndDequeue(t *testing.T) {
	q := New(4)
	assert.Equal(t, 0, q.Len())

	q.SubmitBlocking(NewRecord(record.New("info", "a", nil)))
	q.SubmitBlocking(NewRecord(record.New("info", "b", nil)))
	assert.Equal(t, 2, q.Len())

	q.Dequeue()
	assert.Equal(t, 1, q.Len())
}
