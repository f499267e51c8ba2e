package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/transport"
)

func TestLogAppendsToRecording(t *testing.T) {
	tr := New()
	tr.Log(record.New("info", "hello", nil))
	require.Len(t, tr.Records(), 1)
	assert.Equal(t, "hello", tr.Records()[0].Message)
}

func TestQueryFiltersByLevel(t *testing.T) {
	tr := New()
	tr.Log(record.New("info", "keep", nil))
	tr.Log(record.New("debug", "drop", nil))

	results, err := tr.Query(transport.Query{Levels: []string{"info"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "keep", results[0].Message)
}

func TestQueryFiltersByTimeWindow(t *testing.T) {
	tr := New()
	old := record.New("info", "old", nil)
	old.Timestamp = time.Now().Add(-time.Hour)
	tr.Log(old)
	tr.Log(record.New("info", "recent", nil))

	results, err := tr.Query(transport.Query{From: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "recent", results[0].Message)
}

func TestRecordsReturnsIndependentSnapshot(t *testing.T) {
	tr := New()
	tr.Log(record.New("info", "a", nil))

	snap := tr.Records()
	snap[0].Message = "mutated"

	assert.Equal(t, "a", tr.Records()[0].Message, "mutating the returned snapshot must not affect the recording")
}
