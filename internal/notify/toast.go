// Package notify holds the transient notification and confirmation
// primitives used by the catalog workflow.
package notify

import (
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"sync"
	"time"
)

// DefaultToastTTL is how long a toast stays visible
const DefaultToastTTL = 3 * time.Second

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is a transient notification
type Toast struct {
	Message string `json:"message"`
	Kind    Kind   `json:"type"`
}

// Timer is the part of *time.Timer the Toaster uses
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Toaster shows at most one toast at a time. A new toast replaces the visible
// one and restarts the dismiss timer.
type Toaster struct {
	mu        sync.Mutex
	current   *Toast
	seq       uint64
	timer     Timer
	ttl       time.Duration
	afterFunc AfterFunc
	bus       *events.EventBus[any]
}

type ToasterOption func(*Toaster)

// WithTTL overrides DefaultToastTTL
func WithTTL(d time.Duration) ToasterOption {
	return func(t *Toaster) { t.ttl = d }
}

// WithAfterFunc replaces the timer source, for tests
func WithAfterFunc(f AfterFunc) ToasterOption {
	return func(t *Toaster) { t.afterFunc = f }
}

// NewToaster creates a Toaster. bus may be nil.
func NewToaster(bus *events.EventBus[any], opts ...ToasterOption) *Toaster {
	t := &Toaster{
		ttl:       DefaultToastTTL,
		afterFunc: realAfterFunc,
		bus:       bus,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Toaster) Success(message string) {
	t.Show(Toast{Message: message, Kind: KindSuccess})
}

func (t *Toaster) Error(message string) {
	t.Show(Toast{Message: message, Kind: KindError})
}

// Show replaces the current toast with toast
func (t *Toaster) Show(toast Toast) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.current = &toast
	t.timer = t.afterFunc(t.ttl, func() { t.expire(seq) })
	t.mu.Unlock()

	t.bus.Publish(events.ToastShown{Message: toast.Message, Kind: string(toast.Kind)})
}

// expire dismisses the toast only if it is still the one the timer was armed for
func (t *Toaster) expire(seq uint64) {
	t.mu.Lock()
	if t.seq != seq || t.current == nil {
		t.mu.Unlock()
		return
	}
	t.current = nil
	t.timer = nil
	t.mu.Unlock()

	t.bus.Publish(events.ToastDismissed{})
}

// Dismiss hides the current toast immediately
func (t *Toaster) Dismiss() {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.current = nil
	t.seq++
	t.mu.Unlock()

	t.bus.Publish(events.ToastDismissed{})
}

// Current returns a copy of the visible toast, or nil
func (t *Toaster) Current() *Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	c := *t.current
	return &c
}
