package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mvcclock/src/model"
	"mvcclock/src/render"
	"mvcclock/src/timer"
)

// Recorder accounts for ticks, renders and observer failures, and tracks how
// long the clock has been running.
type Recorder struct {
	reg      *prometheus.Registry
	ticks    prometheus.Counter
	renders  prometheus.Counter
	failures prometheus.Counter
	running  prometheus.Gauge
	lastTime prometheus.Gauge

	mu      sync.Mutex
	clock   timer.Clock
	active  bool
	started time.Time
	total   time.Duration
}

// NewRecorder builds a Recorder with its own registry and a real clock.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcclock_ticks_total",
			Help: "Timer ticks that pushed a time into the model.",
		}),
		renders: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcclock_renders_total",
			Help: "Successful replacements of the output target content.",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mvcclock_observer_failures_total",
			Help: "Ticks whose notification reported at least one failing observer.",
		}),
		running: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mvcclock_timer_running",
			Help: "1 while the controller timer is running.",
		}),
		lastTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mvcclock_last_time_seconds",
			Help: "Unix time of the last value stored in the model.",
		}),
		clock: timer.NewReal(),
	}
}

// WithClock swaps the clock used for uptime (primarily for tests).
func (r *Recorder) WithClock(clock timer.Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if clock == nil {
		r.clock = timer.NewReal()
		return
	}
	r.clock = clock
}

// Registry exposes the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Started marks the beginning of a running period.
func (r *Recorder) Started() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running.Set(1)
	if r.active {
		return
	}
	r.active = true
	r.started = r.clock.Now()
}

// Stopped closes the current running period.
func (r *Recorder) Stopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running.Set(0)
	if !r.active {
		return
	}
	r.total += r.clock.Now().Sub(r.started)
	r.active = false
}

// Uptime reports the accumulated running time, including the current period.
func (r *Recorder) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := r.total
	if r.active {
		total += r.clock.Now().Sub(r.started)
	}
	return total
}

// Tick counts one timer tick.
func (r *Recorder) Tick() {
	r.ticks.Inc()
}

// Failure counts one tick with failing observers.
func (r *Recorder) Failure() {
	r.failures.Inc()
}

// Observe records the time stored in the model.
func (r *Recorder) Observe(_ *model.Model, t time.Time) error {
	r.lastTime.Set(float64(t.UnixNano()) / float64(time.Second))
	return nil
}

// Target wraps target so every successful Replace is counted.
func (r *Recorder) Target(target render.Target) render.Target {
	return countingTarget{next: target, renders: r.renders}
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for a node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

type countingTarget struct {
	next    render.Target
	renders prometheus.Counter
}

func (c countingTarget) Replace(content string) error {
	if err := c.next.Replace(content); err != nil {
		return err
	}
	c.renders.Inc()
	return nil
}

// FormatDuration renders an uptime for the console.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0秒"
	}
	seconds := int(d / time.Second)
	if seconds < 60 {
		return fmt.Sprintf("%d秒", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		if rem := seconds % 60; rem != 0 {
			return fmt.Sprintf("%d分钟%d秒", minutes, rem)
		}
		return fmt.Sprintf("%d分钟", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		if rem := minutes % 60; rem != 0 {
			return fmt.Sprintf("%d小时%d分钟", hours, rem)
		}
		return fmt.Sprintf("%d小时", hours)
	}
	days := hours / 24
	if rem := hours % 24; rem != 0 {
		return fmt.Sprintf("%d天%d小时", days, rem)
	}
	return fmt.Sprintf("%d天", days)
}
