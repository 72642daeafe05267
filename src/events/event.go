package events

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// ErrNilObserver is returned when attaching a nil observer.
var ErrNilObserver = errors.New("events: nil observer")

// Observer receives notifications from an Event.
type Observer[S, T any] interface {
	Observe(sender S, payload T) error
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc[S, T any] func(sender S, payload T) error

// Observe calls f(sender, payload).
func (f ObserverFunc[S, T]) Observe(sender S, payload T) error {
	return f(sender, payload)
}

// Subscription identifies one attachment of an observer.
type Subscription uint64

// ObserverError reports an observer that failed or panicked during Notify.
type ObserverError struct {
	Subscription Subscription
	Err          error
	Panicked     bool
}

func (e *ObserverError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("events: observer %d panicked: %v", e.Subscription, e.Err)
	}
	return fmt.Sprintf("events: observer %d: %v", e.Subscription, e.Err)
}

func (e *ObserverError) Unwrap() error {
	return e.Err
}

type entry[S, T any] struct {
	sub      Subscription
	observer Observer[S, T]
}

// Event is an observer list bound to a single sender.
type Event[S, T any] struct {
	sender    S
	mu        sync.Mutex
	next      Subscription
	observers []entry[S, T]

	// pending payloads, drained in order by the single active deliverer
	queue      []T
	delivering bool
}

// New creates an event owned by sender.
func New[S, T any](sender S) *Event[S, T] {
	return &Event[S, T]{sender: sender}
}

// Sender returns the owner passed to every observer.
func (e *Event[S, T]) Sender() S {
	return e.sender
}

// Attach appends an observer. The same observer may be attached more than once.
func (e *Event[S, T]) Attach(observer Observer[S, T]) (Subscription, error) {
	if observer == nil {
		return 0, ErrNilObserver
	}
	if fn, ok := observer.(ObserverFunc[S, T]); ok && fn == nil {
		return 0, ErrNilObserver
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.observers = append(e.observers, entry[S, T]{sub: e.next, observer: observer})
	return e.next, nil
}

// Detach removes the subscription. It reports whether anything was removed.
func (e *Event[S, T]) Detach(sub Subscription) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, en := range e.observers {
		if en.sub != sub {
			continue
		}
		observers := make([]entry[S, T], 0, len(e.observers)-1)
		observers = append(observers, e.observers[:i]...)
		e.observers = append(observers, e.observers[i+1:]...)
		return true
	}
	return false
}

// Len returns the number of attached observers.
func (e *Event[S, T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.observers)
}

// Notify calls every observer attached at the time the payload is delivered,
// in attach order. A failing or panicking observer does not stop the others.
//
// Deliveries never overlap. A Notify issued while another one is delivering,
// from an observer or from another goroutine, queues its payload and returns
// nil; the active call delivers it after the current round and returns its
// failures together with its own.
func (e *Event[S, T]) Notify(payload T) error {
	e.mu.Lock()
	e.queue = append(e.queue, payload)
	if e.delivering {
		e.mu.Unlock()
		return nil
	}
	e.delivering = true

	var err error
	for len(e.queue) > 0 {
		next := e.queue[0]
		var zero T
		e.queue[0] = zero
		e.queue = e.queue[1:]
		observers := e.observers
		e.mu.Unlock()

		for _, en := range observers {
			err = multierr.Append(err, e.deliver(en, next))
		}

		e.mu.Lock()
	}
	e.queue = nil
	e.delivering = false
	e.mu.Unlock()
	return err
}

func (e *Event[S, T]) deliver(en entry[S, T], payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("%v", r)
			}
			err = &ObserverError{Subscription: en.sub, Err: perr, Panicked: true}
		}
	}()
	if oerr := en.observer.Observe(e.sender, payload); oerr != nil {
		return &ObserverError{Subscription: en.sub, Err: oerr}
	}
	return nil
}
