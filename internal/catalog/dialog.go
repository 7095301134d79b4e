package catalog

import (
	"context"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"github.com/kahvecikaan/catalog-admin/internal/notify"
	"sync"
)

// Dialog is the standalone create dialog of the host page. It reports
// failures with a blocking alert and takes the image URL as typed.
type Dialog struct {
	mu         sync.Mutex
	open       bool
	submitting bool
	draft      domain.Draft

	backend    backend.Backend
	validation *domain.Validation
	alert      notify.AlertFunc
	bus        *events.EventBus[any]
	logger     hclog.Logger

	// OnCreated runs after a successful submit, once the dialog is closed
	OnCreated func(ctx context.Context)
}

// DialogState is a copy of the dialog for rendering
type DialogState struct {
	Open        bool         `json:"open"`
	Submitting  bool         `json:"submitting"`
	SubmitLabel string       `json:"submit_label"`
	Draft       domain.Draft `json:"draft"`
}

// NewDialog creates a closed dialog. alert may be nil, in which case alerts
// are only published on bus.
func NewDialog(b backend.Backend, alert notify.AlertFunc, bus *events.EventBus[any], logger hclog.Logger) *Dialog {
	return &Dialog{
		backend:    b,
		validation: domain.NewValidation(),
		alert:      alert,
		bus:        bus,
		logger:     logger,
	}
}

func (d *Dialog) Open() {
	d.mu.Lock()
	d.open = true
	d.mu.Unlock()
}

// Close hides the dialog. The fields are kept until a successful submit.
func (d *Dialog) Close() {
	d.mu.Lock()
	d.open = false
	d.mu.Unlock()
}

// Set assigns a raw input value to a dialog field
func (d *Dialog) Set(field, raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return domain.ErrDialogClosed
	}
	return d.draft.Set(field, raw)
}

func (d *Dialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := DialogState{Open: d.open, Submitting: d.submitting, SubmitLabel: SubmitCreateLabel, Draft: d.draft}
	if d.submitting {
		s.SubmitLabel = SubmittingLabel
	}
	return s
}

// Submit inserts the dialog's product. A second Submit while the first is in
// flight returns ErrBusy.
func (d *Dialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return domain.ErrDialogClosed
	}
	if d.submitting {
		d.mu.Unlock()
		return domain.ErrBusy
	}
	draft := d.draft
	if errs := d.validation.Validate(draft); len(errs) > 0 {
		d.mu.Unlock()
		return errs
	}
	d.submitting = true
	d.mu.Unlock()

	d.logger.Debug("Creating product from dialog", "name", draft.Name)

	id, err := d.backend.Insert(ctx, draft.Fields())

	d.mu.Lock()
	d.submitting = false
	if err != nil {
		d.mu.Unlock()
		d.logger.Error("Unable to create product", "error", err)
		msg := MsgCreateFailed + err.Error()
		d.bus.Publish(events.AlertRaised{Message: msg})
		if d.alert != nil {
			d.alert(msg)
		}
		return err
	}
	d.open = false
	d.draft.Reset()
	d.mu.Unlock()

	d.bus.Publish(events.ProductAdded{ProductID: id, Name: draft.Name})
	if d.OnCreated != nil {
		d.OnCreated(ctx)
	}
	return nil
}
