package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/transport"
)

func TestLogDoesNotPanicOnUnknownLevel(t *testing.T) {
	tr := New()
	assert.NotPanics(t, func() {
		tr.Log(record.New("not-a-real-level", "message", nil))
	})
}

func TestFlushIsNoop(t *testing.T) {
	tr := New()
	assert.NoError(t, tr.Flush())
}

func TestQueryAlwaysEmpty(t *testing.T) {
	tr := New()
	results, err := tr.Query(transport.Query{})
	require.NoError(t, err)
	assert.Nil(t, results)
}
