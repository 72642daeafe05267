package timer

import (
	"sync"
	"time"
)

// Real is the production clock and scheduler backed by the time package.
type Real struct {
	mu    sync.Mutex
	next  Handle
	stops map[Handle]chan struct{}
}

// NewReal builds a real-time clock and scheduler.
func NewReal() *Real {
	return &Real{stops: map[Handle]chan struct{}{}}
}

// Now returns time.Now().
func (r *Real) Now() time.Time {
	return time.Now()
}

// Every starts a ticker goroutine calling fn every d. Like time.NewTicker it
// panics if d is not positive.
func (r *Real) Every(d time.Duration, fn func()) Handle {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})

	r.mu.Lock()
	r.next++
	h := r.next
	r.stops[h] = stop
	r.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// a tick racing with Cancel must not run
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

// Cancel stops the ticker goroutine behind h.
func (r *Real) Cancel(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stop, ok := r.stops[h]
	if !ok {
		return
	}
	delete(r.stops, h)
	close(stop)
}
