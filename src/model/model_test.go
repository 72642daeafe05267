package model_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcclock/src/events"
	"mvcclock/src/model"
)

func TestTimeUnsetInitially(t *testing.T) {
	m := model.New()
	got, ok := m.Time()
	assert.False(t, ok)
	assert.True(t, got.IsZero())
}

func TestSetTimeReadAfterWrite(t *testing.T) {
	m := model.New()
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	require.NoError(t, m.SetTime(now))

	got, ok := m.Time()
	require.True(t, ok)
	assert.True(t, now.Equal(got))
}

func TestSetTimeNotifiesOnceAfterStoring(t *testing.T) {
	m := model.New()
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	var (
		calls    int
		sender   *model.Model
		payload  time.Time
		observed time.Time
	)
	_, err := m.TimeChanged().Attach(events.ObserverFunc[*model.Model, time.Time](func(s *model.Model, p time.Time) error {
		calls++
		sender = s
		payload = p
		observed, _ = s.Time()
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, m.SetTime(now))

	assert.Equal(t, 1, calls)
	assert.Same(t, m, sender)
	assert.True(t, now.Equal(payload))
	assert.True(t, now.Equal(observed), "observers must see the stored value")
}

func TestNewWithTimeDoesNotNotify(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := model.NewWithTime(start)
	calls := 0
	_, err := m.TimeChanged().Attach(events.ObserverFunc[*model.Model, time.Time](func(*model.Model, time.Time) error {
		calls++
		return nil
	}))
	require.NoError(t, err)

	got, ok := m.Time()
	require.True(t, ok)
	assert.True(t, start.Equal(got))
	assert.Zero(t, calls)
	assert.Same(t, m, m.TimeChanged().Sender())
}

func TestConcurrentSetTimeNotifiesOncePerCall(t *testing.T) {
	const n = 8
	m := model.New()
	var notified atomic.Int32
	_, err := m.TimeChanged().Attach(events.ObserverFunc[*model.Model, time.Time](func(*model.Model, time.Time) error {
		time.Sleep(time.Millisecond)
		notified.Add(1)
		return nil
	}))
	require.NoError(t, err)

	base := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.SetTime(base.Add(time.Duration(i)*time.Second)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(n), notified.Load())
	_, ok := m.Time()
	assert.True(t, ok)
}
