package timer

import (
	"sync"
	"time"
)

// Virtual is a manually advanced clock and scheduler for tests.
// Time only moves through AdvanceBy and AdvanceTo, and due callbacks run
// synchronously on the calling goroutine, outside the internal lock, so a
// callback may call Now, Every or Cancel.
type Virtual struct {
	mu      sync.Mutex
	current time.Time
	next    Handle
	tasks   map[Handle]*virtualTask
}

type virtualTask struct {
	every time.Duration
	due   time.Time
	fn    func()
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{
		current: start,
		tasks:   map[Handle]*virtualTask{},
	}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Every registers fn to run each time the virtual time crosses a multiple of d.
func (v *Virtual) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		panic("timer: non-positive interval for Every")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.next++
	v.tasks[v.next] = &virtualTask{every: d, due: v.current.Add(d), fn: fn}
	return v.next
}

// Cancel removes the callback behind h.
func (v *Virtual) Cancel(h Handle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tasks, h)
}

// Pending returns the number of registered callbacks.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.tasks)
}

// AdvanceBy moves the clock forward by d, firing due callbacks.
// Non-positive durations are a no-op.
func (v *Virtual) AdvanceBy(d time.Duration) {
	if d <= 0 {
		return
	}
	v.AdvanceTo(v.Now().Add(d))
}

// AdvanceTo moves the clock to target and fires every callback whose deadline
// is at or before target, in deadline order (registration order on ties).
// The clock never moves backward.
func (v *Virtual) AdvanceTo(target time.Time) {
	for {
		v.mu.Lock()
		task := v.earliestDue(target)
		if task == nil {
			if target.After(v.current) {
				v.current = target
			}
			v.mu.Unlock()
			return
		}
		v.current = task.due
		task.due = task.due.Add(task.every)
		fn := task.fn
		v.mu.Unlock()

		fn()
	}
}

// earliestDue must be called with v.mu held.
func (v *Virtual) earliestDue(target time.Time) *virtualTask {
	var (
		bestHandle Handle
		best       *virtualTask
	)
	for h, task := range v.tasks {
		if task.due.After(target) {
			continue
		}
		if best == nil || task.due.Before(best.due) || (task.due.Equal(best.due) && h < bestHandle) {
			bestHandle, best = h, task
		}
	}
	return best
}
