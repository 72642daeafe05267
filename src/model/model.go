package model

import (
	"sync"
	"time"

	"mvcclock/src/events"
)

// TimeEvent is the event type fired when the model's time changes.
type TimeEvent = events.Event[*Model, time.Time]

// Model holds the current time shown by the page.
type Model struct {
	mu          sync.RWMutex
	time        time.Time
	set         bool
	timeChanged *TimeEvent
}

// New builds a Model with no time set.
func New() *Model {
	m := &Model{}
	m.timeChanged = events.New[*Model, time.Time](m)
	return m
}

// NewWithTime builds a Model seeded with an initial time. No event is fired.
func NewWithTime(t time.Time) *Model {
	m := New()
	m.time = t
	m.set = true
	return m
}

// Time returns the stored time; ok is false when it was never set.
func (m *Model) Time() (t time.Time, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.time, m.set
}

// SetTime stores t and then notifies TimeChanged with t. Concurrent calls each
// produce exactly one notification; deliveries are serialized by the event.
func (m *Model) SetTime(t time.Time) error {
	m.mu.Lock()
	m.time = t
	m.set = true
	m.mu.Unlock()
	return m.timeChanged.Notify(t)
}

// TimeChanged is dispatched after every SetTime, with the Model as sender.
func (m *Model) TimeChanged() *TimeEvent {
	return m.timeChanged
}
