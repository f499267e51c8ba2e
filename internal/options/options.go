// Package options defines the logger's configuration aggregate and the
// merge rules applied whenever it is reconfigured at runtime.
package options

import (
	"github.com/mdzesseis/logflow/internal/levels"
	"github.com/mdzesseis/logflow/internal/transport"
)

// BackpressurePolicy selects what Submit does when the queue is full.
type BackpressurePolicy int

const (
	// Block waits for room in the queue.
	Block BackpressurePolicy = iota
	// DropOldest steals the oldest queued message to make room, then
	// retries; a stolen control message is never discarded, only a
	// stolen record is.
	DropOldest
	// DropCurrent discards the new record immediately instead of
	// waiting or stealing.
	DropCurrent
)

func (p BackpressurePolicy) String() string {
	switch p {
	case Block:
		return "block"
	case DropOldest:
		return "drop_oldest"
	case DropCurrent:
		return "drop_current"
	default:
		return "unknown"
	}
}

const defaultChannelCapacity = 1024

// Options is the logger's configuration. Every field is optional so a
// partial Options can be merged over the current configuration without
// clobbering fields the caller didn't set. Transports and queue
// capacity/backpressure are the exception: transports are always
// replaced wholesale when present, and queue capacity/backpressure are
// fixed at construction time and cannot be changed by Configure.
type Options struct {
	Level       string
	HasLevel    bool
	Levels      levels.Registry
	HasLevels   bool
	Format      transport.Format
	HasFormat   bool
	Transports  []transport.Entry
	HasTransports bool

	ChannelCapacity    int
	BackpressurePolicy BackpressurePolicy
}

// Default returns the baseline configuration: info level, the default
// registry, no transports, capacity 1024, Block policy.
func Default() Options {
	return Options{
		Level:              "info",
		HasLevel:           true,
		Levels:             levels.Default(),
		HasLevels:          true,
		Transports:         []transport.Entry{},
		HasTransports:      true,
		ChannelCapacity:     defaultChannelCapacity,
		BackpressurePolicy: Block,
	}
}

// Merge returns the result of layering incoming over current, falling
// back to def for anything neither sets. Transports are replaced
// wholesale, never merged entry-by-entry. ChannelCapacity and
// BackpressurePolicy are immutable after construction, so Merge ignores
// them on incoming and always keeps current's value.
func Merge(incoming, current, def Options) Options {
	out := current
	out.ChannelCapacity = current.ChannelCapacity
	out.BackpressurePolicy = current.BackpressurePolicy

	if incoming.HasLevel {
		out.Level, out.HasLevel = incoming.Level, true
	} else if !out.HasLevel {
		out.Level, out.HasLevel = def.Level, true
	}

	if incoming.HasLevels {
		out.Levels, out.HasLevels = incoming.Levels, true
	} else if !out.HasLevels {
		out.Levels, out.HasLevels = def.Levels, true
	}

	if incoming.HasFormat {
		out.Format, out.HasFormat = incoming.Format, true
	} else if !out.HasFormat {
		out.Format, out.HasFormat = def.Format, def.HasFormat
	}

	if incoming.HasTransports {
		out.Transports, out.HasTransports = incoming.Transports, true
	} else if !out.HasTransports {
		out.Transports, out.HasTransports = def.Transports, true
	}

	return out
}
