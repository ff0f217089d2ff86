package simlog

import (
	"log/slog"
	"sync/atomic"
)

// debugLoggingEnabled gates per-tick debug logging across the simulation packages.
// Checking an atomic is cheaper than building attributes for a disabled level.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables hot-path debug logging.
// Called from main after parsing config.LogLevel.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use this to guard per-tick debug log calls:
//
//	if simlog.IsDebugEnabled() {
//	    slog.Debug("state changed", "entityID", id, "state", s)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}

// Once logs a degraded condition a single time per owner.
// The zero value is ready to use.
type Once struct {
	done atomic.Bool
}

// Warn logs at Warn level the first time it is called.
func (o *Once) Warn(msg string, args ...any) {
	if o.done.CompareAndSwap(false, true) {
		slog.Warn(msg, args...)
	}
}

// Fired reports whether the message was already logged.
func (o *Once) Fired() bool {
	return o.done.Load()
}
