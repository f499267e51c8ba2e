// Package backpressure tracks a queue-health Level — none, low, medium,
// high, critical — derived from a weighted blend of utilization
// metrics, independent of the dispatch-time Block/DropOldest/DropCurrent
// policy. It is purely observational: nothing in the dispatch path
// consults it, it only reports how hard the queue is working.
package backpressure

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level classifies how loaded the queue currently is.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Config tunes the thresholds, timing, and per-level factors.
type Config struct {
	LowThreshold      float64 `yaml:"low_threshold"`
	MediumThreshold   float64 `yaml:"medium_threshold"`
	HighThreshold     float64 `yaml:"high_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`

	CheckInterval time.Duration `yaml:"check_interval"`
	StabilizeTime time.Duration `yaml:"stabilize_time"`
	CooldownTime  time.Duration `yaml:"cooldown_time"`

	LowReduction      float64 `yaml:"low_reduction"`
	MediumReduction   float64 `yaml:"medium_reduction"`
	HighReduction     float64 `yaml:"high_reduction"`
	CriticalReduction float64 `yaml:"critical_reduction"`
}

// Metrics is the input to the level computation. QueueUtilization is
// the only field the logging core can actually observe (queue depth
// over capacity); Memory/CPU/IO/ErrorRate are left at zero unless a
// caller wires a host-introspection source of its own.
type Metrics struct {
	QueueUtilization  float64
	MemoryUtilization float64
	CPUUtilization    float64
	IOUtilization     float64
	ErrorRate         float64
}

// Manager computes and holds the current Level from periodically
// supplied Metrics, with hysteresis (stabilize/cooldown) to avoid
// flapping between levels.
type Manager struct {
	config Config
	logger *logrus.Logger

	currentLevel    Level
	currentFactor   float64
	lastLevelChange time.Time
	lastCheck       time.Time
	stabilizeUntil  time.Time

	onLevelChange func(Level, Level, float64)

	metrics Metrics

	mu sync.RWMutex
}

// NewManager builds a Manager, filling any zero-valued Config field
// with its default.
func NewManager(config Config, logger *logrus.Logger) *Manager {
	if config.LowThreshold == 0 {
		config.LowThreshold = 0.6
	}
	if config.MediumThreshold == 0 {
		config.MediumThreshold = 0.75
	}
	if config.HighThreshold == 0 {
		config.HighThreshold = 0.9
	}
	if config.CriticalThreshold == 0 {
		config.CriticalThreshold = 0.95
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = 5 * time.Second
	}
	if config.StabilizeTime == 0 {
		config.StabilizeTime = 30 * time.Second
	}
	if config.CooldownTime == 0 {
		config.CooldownTime = 10 * time.Second
	}
	if config.LowReduction == 0 {
		config.LowReduction = 0.9
	}
	if config.MediumReduction == 0 {
		config.MediumReduction = 0.7
	}
	if config.HighReduction == 0 {
		config.HighReduction = 0.5
	}
	if config.CriticalReduction == 0 {
		config.CriticalReduction = 0.2
	}

	return &Manager{
		config:        config,
		logger:        logger,
		currentLevel:  LevelNone,
		currentFactor: 1.0,
	}
}

// UpdateMetrics records the latest Metrics snapshot and re-evaluates
// the current Level.
func (m *Manager) UpdateMetrics(metrics Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = metrics
	m.lastCheck = time.Now()
	m.evaluateLevel()
}

func (m *Manager) evaluateLevel() {
	overallScore := (m.metrics.QueueUtilization * 0.3) +
		(m.metrics.MemoryUtilization * 0.25) +
		(m.metrics.CPUUtilization * 0.2) +
		(m.metrics.IOUtilization * 0.15) +
		(m.metrics.ErrorRate * 0.1)

	newLevel := m.calculateLevel(overallScore)

	if time.Since(m.lastLevelChange) < m.config.CooldownTime {
		return
	}
	if time.Now().Before(m.stabilizeUntil) && newLevel != m.currentLevel {
		return
	}
	if newLevel != m.currentLevel {
		m.changeLevel(newLevel)
	}
}

func (m *Manager) calculateLevel(score float64) Level {
	switch {
	case score >= m.config.CriticalThreshold:
		return LevelCritical
	case score >= m.config.HighThreshold:
		return LevelHigh
	case score >= m.config.MediumThreshold:
		return LevelMedium
	case score >= m.config.LowThreshold:
		return LevelLow
	default:
		return LevelNone
	}
}

func (m *Manager) changeLevel(newLevel Level) {
	oldLevel := m.currentLevel
	m.currentLevel = newLevel
	m.lastLevelChange = time.Now()
	m.stabilizeUntil = time.Now().Add(m.config.StabilizeTime)

	switch newLevel {
	case LevelNone:
		m.currentFactor = 1.0
	case LevelLow:
		m.currentFactor = m.config.LowReduction
	case LevelMedium:
		m.currentFactor = m.config.MediumReduction
	case LevelHigh:
		m.currentFactor = m.config.HighReduction
	case LevelCritical:
		m.currentFactor = m.config.CriticalReduction
	}

	m.logger.WithFields(logrus.Fields{
		"old_level":   oldLevel.String(),
		"new_level":   newLevel.String(),
		"factor":      m.currentFactor,
		"queue_util":  m.metrics.QueueUtilization,
		"memory_util": m.metrics.MemoryUtilization,
		"cpu_util":    m.metrics.CPUUtilization,
		"io_util":     m.metrics.IOUtilization,
		"error_rate":  m.metrics.ErrorRate,
	}).Info("queue-health level changed")

	if m.onLevelChange != nil {
		m.onLevelChange(oldLevel, newLevel, m.currentFactor)
	}
}

// GetLevel returns the current Level.
func (m *Manager) GetLevel() Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLevel
}

// GetFactor returns the current reduction factor associated with the
// current Level (1.0 at LevelNone, smaller at higher levels).
func (m *Manager) GetFactor() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentFactor
}

// IsActive reports whether the current Level is above none.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLevel != LevelNone
}

// GetMetrics returns the most recently recorded Metrics.
func (m *Manager) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// SetLevelChangeCallback registers fn to be called whenever the Level
// changes.
func (m *Manager) SetLevelChangeCallback(fn func(Level, Level, float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLevelChange = fn
}

// Start runs a periodic re-evaluation loop until ctx is canceled. The
// loop is optional: UpdateMetrics alone keeps the Level current for
// callers that already poll on their own schedule.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	m.logger.Info("starting queue-health monitor")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stopping queue-health monitor")
			return ctx.Err()
		case <-ticker.C:
			m.mu.Lock()
			if time.Since(m.lastCheck) > m.config.CheckInterval {
				m.evaluateLevel()
			}
			m.mu.Unlock()
		}
	}
}

// Reset forces the Level back to none.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeLevel(LevelNone)
}
