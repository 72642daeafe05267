// Package timer provides the wall-clock source and the recurring timer facility
// used to drive the clock page.
//
// Real delegates to the time package and runs every recurring callback on its
// own goroutine. Virtual keeps a manual clock and fires due callbacks
// synchronously from AdvanceBy/AdvanceTo, which makes tick sequences
// deterministic in tests:
//
//	v := timer.NewVirtual(start)
//	v.Every(time.Second, tick)
//	v.AdvanceBy(3 * time.Second) // tick runs three times
package timer

import "time"

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Handle identifies a recurring callback registered with a Scheduler.
// The zero Handle never refers to a scheduled callback.
type Handle uint64

// Scheduler runs callbacks repeatedly at a fixed interval.
type Scheduler interface {
	// Every calls fn once per elapsed interval d until the returned handle is cancelled.
	Every(d time.Duration, fn func()) Handle
	// Cancel stops the callback behind h. Unknown, zero or already cancelled
	// handles are ignored.
	Cancel(h Handle)
}
