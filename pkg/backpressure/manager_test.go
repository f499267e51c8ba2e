package backpressure

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewManager(Config{
		CheckInterval: time.Millisecond,
		StabilizeTime: 0,
		CooldownTime:  0,
	}, logger)
}

func TestLevelStartsNone(t *testing.T) {
	m := newTestManager()
	assert.Equal(t, LevelNone, m.GetLevel())
	assert.False(t, m.IsActive())
}

func TestHighUtilizationRaisesLevel(t *testing.T) {
	m := newTestManager()
	m.UpdateMetrics(Metrics{QueueUtilization: 1.0, MemoryUtilization: 1.0, CPUUtilization: 1.0, IOUtilization: 1.0, ErrorRate: 1.0})

	assert.Equal(t, LevelCritical, m.GetLevel())
	assert.True(t, m.IsActive())
	assert.Less(t, m.GetFactor(), 1.0)
}

func TestLevelChangeCallbackFires(t *testing.T) {
	m := newTestManager()

	var oldSeen, newSeen Level
	fired := make(chan struct{}, 1)
	m.SetLevelChangeCallback(func(old, new_ Level, factor float64) {
		oldSeen, newSeen = old, new_
		fired <- struct{}{}
	})

	m.UpdateMetrics(Metrics{QueueUtilization: 1.0, MemoryUtilization: 1.0, CPUUtilization: 1.0, IOUtilization: 1.0, ErrorRate: 1.0})
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("level change callback never fired")
	}

	assert.Equal(t, LevelNone, oldSeen)
	assert.Equal(t, LevelCritical, newSeen)
}

func TestResetReturnsToNone(t *testing.T) {
	m := newTestManager()
	m.UpdateMetrics(Metrics{QueueUtilization: 1.0, MemoryUtilization: 1.0, CPUUtilization: 1.0, IOUtilization: 1.0, ErrorRate: 1.0})
	require.Equal(t, LevelCritical, m.GetLevel())

	m.Reset()
	assert.Equal(t, LevelNone, m.GetLevel())
	assert.Equal(t, 1.0, m.GetFactor())
}

func TestLevelStringCovers(t *testing.T) {
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "low", LevelLow.String())
	assert.Equal(t, "medium", LevelMedium.String())
	assert.Equal(t, "high", LevelHigh.String())
	assert.Equal(t, "critical", LevelCritical.String())
}
