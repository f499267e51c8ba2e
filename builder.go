package logflow

import (
	"github.com/mdzesseis/logflow/internal/levels"
	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/transport"
)

// LoggerBuilder accumulates configuration through chained With* calls
// and produces a running Logger on Build.
type LoggerBuilder struct {
	opts       options.Options
	transports []transport.Wrapper
}

// NewBuilder returns a LoggerBuilder seeded with the default
// configuration.
func NewBuilder() *LoggerBuilder {
	return &LoggerBuilder{opts: options.Default()}
}

// WithLevel sets the logger-wide minimum level.
func (b *LoggerBuilder) WithLevel(level string) *LoggerBuilder {
	b.opts.Level, b.opts.HasLevel = level, true
	return b
}

// WithLevels replaces the severity registry.
func (b *LoggerBuilder) WithLevels(reg levels.Registry) *LoggerBuilder {
	b.opts.Levels, b.opts.HasLevels = reg, true
	return b
}

// WithChannelCapacity sets the bounded queue's capacity. Only takes
// effect at Build time: Configure cannot change it afterward.
func (b *LoggerBuilder) WithChannelCapacity(capacity int) *LoggerBuilder {
	b.opts.ChannelCapacity = capacity
	return b
}

// WithBackpressurePolicy sets the policy Submit applies when the queue
// is full. Only takes effect at Build time: Configure cannot change it
// afterward.
func (b *LoggerBuilder) WithBackpressurePolicy(policy options.BackpressurePolicy) *LoggerBuilder {
	b.opts.BackpressurePolicy = policy
	return b
}

// WithFormat sets the logger-wide default format, used by any attached
// transport that declares no format override of its own.
func (b *LoggerBuilder) WithFormat(f transport.Format) *LoggerBuilder {
	b.opts.Format, b.opts.HasFormat = f, true
	return b
}

// WithTransport queues t (wrapped with only the overrides t itself
// declares through LevelProvider/FormatProvider) to be attached
// once the Logger is built.
func (b *LoggerBuilder) WithTransport(t transport.Transport) *LoggerBuilder {
	b.transports = append(b.transports, transport.Wrap(t))
	return b
}

// WithWrappedTransport queues a pre-wrapped transport, letting the
// caller set a per-transport level or format override before Build.
func (b *LoggerBuilder) WithWrappedTransport(w transport.Wrapper) *LoggerBuilder {
	b.transports = append(b.transports, w)
	return b
}

// Build constructs and starts a Logger from the accumulated
// configuration, then attaches every queued transport in the order
// they were added.
func (b *LoggerBuilder) Build() *Logger {
	l := New(&b.opts)
	for _, w := range b.transports {
		l.AddWrappedTransport(w)
	}
	return l
}
