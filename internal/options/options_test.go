package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdzesseis/logflow/internal/transport"
)

func TestMergePartialLeavesUnsetFieldsAtCurrent(t *testing.T) {
	current := Default()
	current.Level, current.HasLevel = "debug", true

	incoming := Options{Level: "error", HasLevel: true}
	merged := Merge(incoming, current, Default())

	assert.Equal(t, "error", merged.Level)
	assert.True(t, merged.HasLevels, "levels registry should fall back to current, not be cleared")
}

func TestMergeIgnoresChannelCapacityAndPolicyFromIncoming(t *testing.T) {
	current := Default()
	current.ChannelCapacity = 2048
	current.BackpressurePolicy = DropOldest

	incoming := Options{ChannelCapacity: 1, BackpressurePolicy: Block}
	merged := Merge(incoming, current, Default())

	assert.Equal(t, 2048, merged.ChannelCapacity)
	assert.Equal(t, DropOldest, merged.BackpressurePolicy)
}

func TestMergeTransportsReplacedWholesale(t *testing.T) {
	current := Default()
	current.Transports = []transport.Entry{{Handle: transport.NextHandle()}}
	current.HasTransports = true

	incoming := Options{
		Transports:    []transport.Entry{{Handle: transport.NextHandle()}, {Handle: transport.NextHandle()}},
		HasTransports: true,
	}
	merged := Merge(incoming, current, Default())

	require.Len(t, merged.Transports, 2, "incoming transports should replace current's wholesale, not merge entry-by-entry")
}

func TestBackpressurePolicyString(t *testing.T) {
	assert.Equal(t, "block", Block.String())
	assert.Equal(t, "drop_oldest", DropOldest.String())
	assert.Equal(t, "drop_current", DropCurrent.String())
}
