package logflow

import (
	"sync"
	"sync/atomic"

	"github.com/mdzesseis/logflow/internal/options"
	"github.com/mdzesseis/logflow/internal/record"
)

// global holds the process-wide default Logger, set at most once.
// Unlike the always-initialized lazy_static default this is grounded
// on, the global here deliberately requires an explicit Init call:
// logging before Init is a caller bug, not a condition to paper over
// with an implicit default configuration.
var (
	globalOnce sync.Once
	globalInit atomic.Bool
	global     *Logger
)

// Init constructs the global Logger from opts and starts it. Calling
// Init a second time panics: the global singleton is set-once, not
// reconfigurable by re-initialization. Use Configure (or Reconfigure)
// to change a running global Logger's settings instead.
func Init(opts *options.Options) {
	initialized := false
	globalOnce.Do(func() {
		global = New(opts)
		globalInit.Store(true)
		initialized = true
	})
	if !initialized {
		panic("logflow: Init called more than once")
	}
}

// Initialized reports whether Init has been called.
func Initialized() bool {
	return globalInit.Load()
}

// TrySubmit submits r to the global Logger if one has been
// initialized, and reports whether it did. It never panics: a
// not-yet-initialized global is a common startup race (background
// goroutines logging before main finishes wiring things up), not an
// error worth crashing over.
func TrySubmit(r record.Record) bool {
	if !globalInit.Load() {
		return false
	}
	global.Submit(r)
	return true
}

// Configure submits a Configure message to the global Logger. A no-op
// if the global has not been initialized.
func Configure(opts options.Options) {
	if !globalInit.Load() {
		return
	}
	global.Configure(opts)
}

// Reconfigure is Configure under another name, kept for callers that
// want to read "adjust the running global" rather than "merge a
// partial options value into it" at the call site.
func Reconfigure(opts options.Options) {
	Configure(opts)
}

// Close shuts down the global Logger. A no-op if the global has not
// been initialized.
func Close() {
	if !globalInit.Load() {
		return
	}
	global.Close()
}

// Flush flushes the global Logger. A no-op returning nil if the global
// has not been initialized.
func Flush() error {
	if !globalInit.Load() {
		return nil
	}
	return global.Flush()
}
