// Package delay applies simulated latency to backing-store operations,
// for memory and swap accesses that model non-trivial I/O cost.
package delay

import (
	"log/slog"
	"time"
)

// Apply sleeps for durationMs milliseconds, logging the simulated
// operation at debug level before and after.
func Apply(log *slog.Logger, operation string, durationMs int) {
	if durationMs <= 0 {
		return
	}
	log.Debug("applying simulated delay", "operation", operation, "duration_ms", durationMs)
	time.Sleep(time.Duration(durationMs) * time.Millisecond)
	log.Debug("delay complete", "operation", operation)
}
