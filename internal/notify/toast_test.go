package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kahvecikaan/catalog-admin/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs the i-th timer callback as if it had elapsed, even if stopped
func (c *fakeClock) fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

func TestToasterShowAndExpire(t *testing.T) {
	clock := &fakeClock{}
	bus := events.NewEventBus[any]()
	sub := bus.Subscribe()
	toaster := NewToaster(bus, WithAfterFunc(clock.AfterFunc))

	toaster.Success("Producto eliminado")

	require.NotNil(t, toaster.Current())
	assert.Equal(t, Toast{Message: "Producto eliminado", Kind: KindSuccess}, *toaster.Current())
	require.Len(t, clock.timers, 1)
	assert.Equal(t, DefaultToastTTL, clock.timers[0].d)

	clock.fire(0)
	assert.Nil(t, toaster.Current())

	assert.Equal(t, events.ToastShown{Message: "Producto eliminado", Kind: "success"}, <-sub)
	assert.Equal(t, events.ToastDismissed{}, <-sub)
}

func TestToasterReplacesVisibleToast(t *testing.T) {
	clock := &fakeClock{}
	toaster := NewToaster(nil, WithAfterFunc(clock.AfterFunc))

	toaster.Success("first")
	toaster.Error("second")

	assert.True(t, clock.timers[0].stopped)
	assert.Equal(t, "second", toaster.Current().Message)
	assert.Equal(t, KindError, toaster.Current().Kind)

	// a stale timer must not dismiss the newer toast
	clock.fire(0)
	require.NotNil(t, toaster.Current())
	assert.Equal(t, "second", toaster.Current().Message)

	clock.fire(1)
	assert.Nil(t, toaster.Current())
}

func TestToasterDismiss(t *testing.T) {
	clock := &fakeClock{}
	toaster := NewToaster(nil, WithAfterFunc(clock.AfterFunc), WithTTL(time.Second))

	toaster.Error("boom")
	assert.Equal(t, time.Second, clock.timers[0].d)

	toaster.Dismiss()
	assert.Nil(t, toaster.Current())
	assert.True(t, clock.timers[0].stopped)

	// no toast, nothing to do
	toaster.Dismiss()
}

func TestToasterRealTimer(t *testing.T) {
	toaster := NewToaster(nil, WithTTL(10*time.Millisecond))
	toaster.Success("ok")

	assert.Eventually(t, func() bool { return toaster.Current() == nil }, time.Second, 5*time.Millisecond)
}

func TestContextConfirm(t *testing.T) {
	ctx := context.Background()
	assert.False(t, ContextConfirm(ctx, "¿Eliminar producto?"))
	assert.True(t, ContextConfirm(WithAnswer(ctx, true), "¿Eliminar producto?"))
	assert.False(t, ContextConfirm(WithAnswer(ctx, false), "¿Eliminar producto?"))
	assert.False(t, Decline(ctx, ""))
}
