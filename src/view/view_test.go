package view_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcclock/src/controller"
	"mvcclock/src/model"
	"mvcclock/src/render"
	"mvcclock/src/timer"
	"mvcclock/src/view"
)

var start = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*model.Model, *controller.Controller, *timer.Virtual, *render.Buffer, *view.View) {
	t.Helper()
	v := timer.NewVirtual(start)
	m := model.New()
	c := controller.New(m, controller.WithClock(v), controller.WithScheduler(v))
	buf := render.NewBuffer()
	vw, err := view.New(m, c, buf)
	require.NoError(t, err)
	return m, c, v, buf, vw
}

func TestUpdateTimeOverwrites(t *testing.T) {
	_, _, _, buf, vw := setup(t)

	require.NoError(t, vw.UpdateTime(start))
	require.NoError(t, vw.UpdateTime(start.Add(time.Minute)))

	assert.Equal(t, "The Time Is: Thu Oct 15 2026 12:01:00 GMT+0000 (UTC)", buf.Content())
	assert.Equal(t, 2, buf.Writes())
}

func TestViewRereadsModelInsteadOfPayload(t *testing.T) {
	m, _, _, buf, _ := setup(t)
	require.NoError(t, m.SetTime(start))

	require.NoError(t, m.TimeChanged().Notify(start.Add(time.Hour)))
	assert.Equal(t, view.TimePrefix+start.Format(view.DefaultLayout), buf.Content())
}

func TestWithLayout(t *testing.T) {
	m := model.New()
	buf := render.NewBuffer()
	_, err := view.New(m, nil, buf, view.WithLayout(time.Kitchen))
	require.NoError(t, err)

	require.NoError(t, m.SetTime(start))
	assert.Equal(t, "The Time Is: 12:00PM", buf.Content())
}

func TestCloseDetaches(t *testing.T) {
	m, _, _, buf, vw := setup(t)
	require.NoError(t, m.SetTime(start))
	vw.Close()
	require.NoError(t, m.SetTime(start.Add(time.Second)))

	assert.Equal(t, 1, buf.Writes())
	assert.Zero(t, m.TimeChanged().Len())
}

func TestNewRejectsNilTarget(t *testing.T) {
	_, err := view.New(model.New(), nil, nil)
	assert.Error(t, err)
}

func TestRenderFailureSurfacesThroughNotify(t *testing.T) {
	m := model.New()
	broken := errors.New("disk full")
	_, err := view.New(m, nil, render.TargetFunc(func(string) error { return broken }))
	require.NoError(t, err)

	assert.ErrorIs(t, m.SetTime(start), broken)
}

func TestClockPageEndToEnd(t *testing.T) {
	_, c, v, buf, vw := setup(t)
	assert.Same(t, c, vw.Controller())

	require.NoError(t, c.Start())
	assert.Equal(t, "The Time Is: "+start.Format(view.DefaultLayout), buf.Content())

	v.AdvanceBy(2 * time.Second)
	assert.Equal(t, "The Time Is: "+start.Add(2*time.Second).Format(view.DefaultLayout), buf.Content())

	c.Stop()
	frozen := buf.Content()
	writes := buf.Writes()
	v.AdvanceBy(24 * time.Hour)
	assert.Equal(t, frozen, buf.Content())
	assert.Equal(t, writes, buf.Writes())
}
