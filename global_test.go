package logflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/record"
)

// Init is a set-once singleton, so every assertion about its
// before/after behavior has to live in one test: there is no way to
// reset it between test functions the way a fresh process would.
func TestGlobalSingletonLifecycle(t *testing.T) {
	assert.False(t, Initialized())
	assert.False(t, TrySubmit(record.New("info", "before init", nil)))

	o := options.Default()
	Init(&o)
	require.True(t, Initialized())

	assert.True(t, TrySubmit(record.New("info", "after init", nil)))
	assert.Panics(t, func() { Init(&o) }, "a second Init call must panic")

	require.NoError(t, Flush())
	Close()
}
