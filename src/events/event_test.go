package events_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"mvcclock/src/events"
)

type call struct {
	name    string
	sender  string
	payload int
}

type recorder struct {
	calls []call
}

func (r *recorder) observer(name string) events.ObserverFunc[string, int] {
	return func(sender string, payload int) error {
		r.calls = append(r.calls, call{name: name, sender: sender, payload: payload})
		return nil
	}
}

func TestNotifyCallsObserversInAttachOrder(t *testing.T) {
	evt := events.New[string, int]("model")
	rec := &recorder{}
	for _, name := range []string{"a", "b", "c"} {
		_, err := evt.Attach(rec.observer(name))
		require.NoError(t, err)
	}

	require.NoError(t, evt.Notify(7))

	assert.Equal(t, []call{
		{name: "a", sender: "model", payload: 7},
		{name: "b", sender: "model", payload: 7},
		{name: "c", sender: "model", payload: 7},
	}, rec.calls)
}

func TestAttachAllowsDuplicates(t *testing.T) {
	evt := events.New[string, int]("model")
	rec := &recorder{}
	obs := rec.observer("dup")
	first, err := evt.Attach(obs)
	require.NoError(t, err)
	second, err := evt.Attach(obs)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, evt.Len())
	require.NoError(t, evt.Notify(1))
	assert.Len(t, rec.calls, 2)
}

func TestAttachRejectsNilObserver(t *testing.T) {
	evt := events.New[string, int]("model")

	_, err := evt.Attach(nil)
	assert.ErrorIs(t, err, events.ErrNilObserver)

	var fn events.ObserverFunc[string, int]
	_, err = evt.Attach(fn)
	assert.ErrorIs(t, err, events.ErrNilObserver)
	assert.Equal(t, 0, evt.Len())
}

func TestDetach(t *testing.T) {
	evt := events.New[string, int]("model")
	rec := &recorder{}
	_, err := evt.Attach(rec.observer("a"))
	require.NoError(t, err)
	sub, err := evt.Attach(rec.observer("b"))
	require.NoError(t, err)
	_, err = evt.Attach(rec.observer("c"))
	require.NoError(t, err)

	assert.True(t, evt.Detach(sub))
	assert.False(t, evt.Detach(sub), "second detach should report nothing removed")
	assert.False(t, evt.Detach(events.Subscription(999)))

	require.NoError(t, evt.Notify(3))
	require.Len(t, rec.calls, 2)
	assert.Equal(t, "a", rec.calls[0].name)
	assert.Equal(t, "c", rec.calls[1].name)
}

func TestNotifyIsolatesFailingObservers(t *testing.T) {
	evt := events.New[string, int]("model")
	rec := &recorder{}
	boom := errors.New("boom")

	_, err := evt.Attach(events.ObserverFunc[string, int](func(string, int) error { return boom }))
	require.NoError(t, err)
	_, err = evt.Attach(events.ObserverFunc[string, int](func(string, int) error { panic("kaput") }))
	require.NoError(t, err)
	_, err = evt.Attach(rec.observer("last"))
	require.NoError(t, err)

	err = evt.Notify(5)
	require.Error(t, err)
	assert.Len(t, rec.calls, 1, "observer after the failures must still run")
	assert.ErrorIs(t, err, boom)

	failures := multierr.Errors(err)
	require.Len(t, failures, 2)
	var oerr *events.ObserverError
	require.ErrorAs(t, failures[1], &oerr)
	assert.True(t, oerr.Panicked)
	assert.Contains(t, oerr.Error(), "kaput")
}

func TestNotifyFromObserverIsDeliveredAfterCurrentRound(t *testing.T) {
	evt := events.New[string, int]("model")
	rec := &recorder{}
	var inner error
	_, err := evt.Attach(events.ObserverFunc[string, int](func(sender string, payload int) error {
		rec.calls = append(rec.calls, call{name: "first", sender: sender, payload: payload})
		if payload == 1 {
			inner = evt.Notify(2)
		}
		return nil
	}))
	require.NoError(t, err)
	_, err = evt.Attach(rec.observer("second"))
	require.NoError(t, err)

	require.NoError(t, evt.Notify(1))
	assert.NoError(t, inner)
	assert.Equal(t, []call{
		{name: "first", sender: "model", payload: 1},
		{name: "second", sender: "model", payload: 1},
		{name: "first", sender: "model", payload: 2},
		{name: "second", sender: "model", payload: 2},
	}, rec.calls)
}

func TestNotifyReturnsFailuresOfQueuedPayloads(t *testing.T) {
	evt := events.New[string, int]("model")
	boom := errors.New("boom")
	_, err := evt.Attach(events.ObserverFunc[string, int](func(_ string, payload int) error {
		if payload == 1 {
			require.NoError(t, evt.Notify(2))
			return nil
		}
		return boom
	}))
	require.NoError(t, err)

	err = evt.Notify(1)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, multierr.Errors(err), 1)
}

func TestConcurrentNotifyDeliversEveryPayload(t *testing.T) {
	const n = 8
	evt := events.New[string, int]("model")
	var (
		mu   sync.Mutex
		seen []int
	)
	_, err := evt.Attach(events.ObserverFunc[string, int](func(_ string, payload int) error {
		time.Sleep(time.Millisecond)
		mu.Lock()
		seen = append(seen, payload)
		mu.Unlock()
		return nil
	}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(payload int) {
			defer wg.Done()
			assert.NoError(t, evt.Notify(payload))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, seen)
}

func TestObserverAttachedDuringNotifyWaitsForNextRound(t *testing.T) {
	evt := events.New[string, int]("model")
	rec := &recorder{}
	attached := false
	_, err := evt.Attach(events.ObserverFunc[string, int](func(string, int) error {
		if !attached {
			attached = true
			_, err := evt.Attach(rec.observer("late"))
			return err
		}
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, evt.Notify(1))
	assert.Empty(t, rec.calls)

	require.NoError(t, evt.Notify(2))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 2, rec.calls[0].payload)
}
