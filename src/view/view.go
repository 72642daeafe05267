package view

import (
	"errors"
	"time"

	"mvcclock/src/controller"
	"mvcclock/src/events"
	"mvcclock/src/model"
	"mvcclock/src/render"
)

// TimePrefix is the message shown in front of the current time.
const TimePrefix = "The Time Is: "

// DefaultLayout formats times the way a browser prints a Date.
const DefaultLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

var errNilTarget = errors.New("view: nil output target")

// TimeObserver is notified when a model's time changes.
type TimeObserver = events.Observer[*model.Model, time.Time]

var _ TimeObserver = (*View)(nil)

// Option configures a View.
type Option func(*View)

// WithLayout sets the time layout used by UpdateTime.
func WithLayout(layout string) Option {
	return func(v *View) { v.layout = layout }
}

// View renders the model's time into an output target.
type View struct {
	model      *model.Model
	controller *controller.Controller
	target     render.Target
	layout     string
	sub        events.Subscription
}

// New builds a View and registers it on the model's TimeChanged event.
func New(m *model.Model, c *controller.Controller, target render.Target, opts ...Option) (*View, error) {
	if target == nil {
		return nil, errNilTarget
	}
	v := &View{
		model:      m,
		controller: c,
		target:     target,
		layout:     DefaultLayout,
	}
	for _, opt := range opts {
		opt(v)
	}
	sub, err := m.TimeChanged().Attach(v)
	if err != nil {
		return nil, err
	}
	v.sub = sub
	return v, nil
}

// Controller returns the controller commands are dispatched to.
func (v *View) Controller() *controller.Controller {
	return v.controller
}

// Observe re-reads the model rather than trusting the payload, so the view
// always shows the latest stored time.
func (v *View) Observe(_ *model.Model, _ time.Time) error {
	t, _ := v.model.Time()
	return v.UpdateTime(t)
}

// UpdateTime replaces the target content with the prefixed time.
func (v *View) UpdateTime(t time.Time) error {
	return v.target.Replace(v.Text(t))
}

// Text returns the string UpdateTime renders for t.
func (v *View) Text(t time.Time) string {
	return TimePrefix + t.Format(v.layout)
}

// Close detaches the view from the model.
func (v *View) Close() {
	v.model.TimeChanged().Detach(v.sub)
}
