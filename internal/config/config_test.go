package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzesseis/logflow/internal/options"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, validate(&cfg))
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Level, cfg.Level)
}

func TestLoadParsesYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("level: debug\nchannel_capacity: 256\nbackpressure_policy: drop_oldest\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, 256, cfg.ChannelCapacity)
	assert.Equal(t, "drop_oldest", cfg.BackpressurePolicy)
}

func TestLoadRejectsInvalidBackpressurePolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backpressure_policy: not_a_policy\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("LOGFLOW_LEVEL", "warn")
	t.Setenv("LOGFLOW_CHANNEL_CAPACITY", "512")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, 512, cfg.ChannelCapacity)
}

func TestToOptionsMapsBackpressurePolicy(t *testing.T) {
	cfg := Default()
	cfg.BackpressurePolicy = "drop_current"
	opts := cfg.ToOptions()
	assert.Equal(t, options.DropCurrent, opts.BackpressurePolicy)
}

func TestToOptionsBuildsCustomLevelRegistry(t *testing.T) {
	cfg := Default()
	cfg.Levels = map[string]int{"critical": 0, "normal": 5}
	opts := cfg.ToOptions()

	require.True(t, opts.HasLevels)
	sev, ok := opts.Levels.Severity("critical")
	require.True(t, ok)
	assert.Equal(t, uint8(0), sev)
}
