package pages

import (
	"time"

	"go.uber.org/zap"

	"mvcclock/src/controller"
	"mvcclock/src/logging"
	"mvcclock/src/metrics"
	"mvcclock/src/model"
	"mvcclock/src/render"
	"mvcclock/src/timer"
	"mvcclock/src/view"
)

// Env carries the collaborators a page initializer wires together.
type Env struct {
	Target    render.Target
	Clock     timer.Clock
	Scheduler timer.Scheduler
	Interval  time.Duration
	Log       *zap.SugaredLogger
	Metrics   *metrics.Recorder
	TimeLog   *logging.TimeLogger
}

func (e Env) withDefaults() Env {
	if e.Target == nil {
		e.Target = render.NewBuffer()
	}
	if e.Clock == nil || e.Scheduler == nil {
		rt := timer.NewReal()
		if e.Clock == nil {
			e.Clock = rt
		}
		if e.Scheduler == nil {
			e.Scheduler = rt
		}
	}
	if e.Interval <= 0 {
		e.Interval = controller.DefaultInterval
	}
	if e.Log == nil {
		e.Log = logging.Nop()
	}
	return e
}

// Page is one running Model-View-Controller triple.
type Page struct {
	ID         string
	Model      *model.Model
	Controller *controller.Controller
	View       *view.View
	TimeLog    *logging.TimeLogger
	Metrics    *metrics.Recorder
}

// Close stops the timer and detaches the view.
func (p *Page) Close() {
	p.Controller.Stop()
	p.View.Close()
}

// Index wires the clock page: Model, Controller(Model), View(Model,
// Controller, target), then starts the timer.
func Index(env Env) (*Page, error) {
	m := model.New()

	target := env.Target
	opts := []controller.Option{
		controller.WithClock(env.Clock),
		controller.WithScheduler(env.Scheduler),
		controller.WithInterval(env.Interval),
		controller.WithLogger(env.Log),
	}
	if env.Metrics != nil {
		target = env.Metrics.Target(target)
		opts = append(opts, controller.WithRecorder(env.Metrics))
		if _, err := m.TimeChanged().Attach(env.Metrics); err != nil {
			return nil, err
		}
	}
	if env.TimeLog != nil {
		if _, err := m.TimeChanged().Attach(env.TimeLog); err != nil {
			return nil, err
		}
	}

	c := controller.New(m, opts...)
	v, err := view.New(m, c, target)
	if err != nil {
		return nil, err
	}
	if err := c.Start(); err != nil {
		env.Log.Warnw("first render failed", "error", err)
	}
	return &Page{
		Model:      m,
		Controller: c,
		View:       v,
		TimeLog:    env.TimeLog,
		Metrics:    env.Metrics,
	}, nil
}
