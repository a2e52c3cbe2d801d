// Package safego launches background goroutines that survive panics.
package safego

import "log/slog"

// Go runs fn on its own goroutine, recovering and logging any panic. Used for
// fire-and-forget work such as the invite sweeper, where a panic would
// otherwise kill the job silently for the life of the process.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
