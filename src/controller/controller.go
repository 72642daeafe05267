package controller

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mvcclock/src/logging"
	"mvcclock/src/model"
	"mvcclock/src/timer"
)

// DefaultInterval is the period between two ticks.
const DefaultInterval = 1000 * time.Millisecond

// ErrAlreadyRunning is returned by Start when the timer is already running.
var ErrAlreadyRunning = errors.New("controller: timer already running")

// Recorder receives tick accounting from the controller.
type Recorder interface {
	Started()
	Stopped()
	Tick()
	Failure()
}

type noopRecorder struct{}

func (noopRecorder) Started() {}
func (noopRecorder) Stopped() {}
func (noopRecorder) Tick()    {}
func (noopRecorder) Failure() {}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the wall-clock source.
func WithClock(clock timer.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithScheduler sets the recurring timer facility.
func WithScheduler(s timer.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithInterval sets the tick period. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRecorder sets the tick recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

// Controller pushes the current time into a Model on a recurring timer.
type Controller struct {
	model    *model.Model
	clock    timer.Clock
	sched    timer.Scheduler
	interval time.Duration
	log      *zap.SugaredLogger
	rec      Recorder

	mu     sync.Mutex
	handle timer.Handle
	gen    uint64
	last   time.Time
}

// New builds a stopped Controller for m.
func New(m *model.Model, opts ...Option) *Controller {
	c := &Controller{
		model:    m,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil || c.sched == nil {
		rt := timer.NewReal()
		if c.clock == nil {
			c.clock = rt
		}
		if c.sched == nil {
			c.sched = rt
		}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.log = c.log.With("source", "controller")
	if c.rec == nil {
		c.rec = noopRecorder{}
	}
	return c
}

// Model returns the controlled model.
func (c *Controller) Model() *model.Model {
	return c.model
}

// Interval returns the tick period.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Running reports whether the timer is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != 0
}

// Start schedules the recurring tick and then ticks once immediately, so the
// model holds the current time before the first interval elapses. The timer
// keeps running even when the immediate tick reports failing observers; that
// failure is returned.
//
// Observers run without the controller lock held, so they may call Start,
// Stop or Running.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.handle != 0 {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.gen++
	gen := c.gen
	c.handle = c.sched.Every(c.interval, func() { c.tick(gen) })
	c.rec.Started()
	c.log.Debugw("timer started", "interval", c.interval)
	now := c.nextLocked()
	c.mu.Unlock()
	return c.push(now)
}

// Stop cancels the timer. It is a no-op when the timer is not running. A tick
// already delivering when Stop is called finishes; no later tick of that run
// reaches the model.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == 0 {
		return
	}
	c.sched.Cancel(c.handle)
	c.handle = 0
	c.rec.Stopped()
	c.log.Debugw("timer stopped")
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	// stale ticks from a cancelled run are dropped
	if c.handle == 0 || c.gen != gen {
		c.mu.Unlock()
		return
	}
	now := c.nextLocked()
	c.mu.Unlock()
	_ = c.push(now)
}

// nextLocked reads the clock, clamped so pushed times never go backwards.
// It must be called with c.mu held.
func (c *Controller) nextLocked() time.Time {
	now := c.clock.Now()
	if now.Before(c.last) {
		now = c.last
	}
	c.last = now
	c.rec.Tick()
	return now
}

func (c *Controller) push(now time.Time) error {
	if err := c.model.SetTime(now); err != nil {
		c.rec.Failure()
		c.log.Warnw("time change observers failed", "time", now, "error", err)
		return err
	}
	return nil
}
