// Package catalog implements the product catalog admin workflow: loading the
// product list, the create and edit forms, confirmed deletes and image
// attachment, all over a single owned state object.
package catalog

import (
	"context"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"github.com/kahvecikaan/catalog-admin/internal/notify"
	"sort"
	"sync"
)

// EditStrategy selects how products are edited
type EditStrategy string

const (
	// EditForm opens a pre-populated form and sends every field
	EditForm EditStrategy = "form"
	// EditPrompt asks for name, price and stock in turn and sends only those
	EditPrompt EditStrategy = "prompt"
)

// ConfirmStrategy selects how deletes are confirmed
type ConfirmStrategy string

const (
	// ConfirmModal records the pending delete until ConfirmDelete or CancelDelete
	ConfirmModal ConfirmStrategy = "modal"
	// ConfirmNative asks a blocking ConfirmFunc before deleting
	ConfirmNative ConfirmStrategy = "native"
)

// Reconcile selects how the list is brought up to date after a mutation
type Reconcile string

const (
	// ReconcileMixed re-fetches after create and form edit, and patches the
	// list locally after delete and prompt edit.
	ReconcileMixed Reconcile = "mixed"
	// ReconcileRefetch re-fetches after every successful mutation
	ReconcileRefetch Reconcile = "refetch"
)

// Workflow owns the catalog view state. Backend calls run without holding the
// lock, and their results are applied to whatever state exists when they
// complete.
type Workflow struct {
	mu            sync.Mutex
	mode          Mode
	products      []domain.Product
	loadErr       string
	createDraft   domain.Draft
	editDraft     domain.Draft
	editingID     int
	pendingDelete *int

	backend    backend.Backend
	objects    backend.ObjectStore
	toaster    *notify.Toaster
	validation *domain.Validation
	bus        *events.EventBus[any]
	logger     hclog.Logger

	editStrategy    EditStrategy
	confirmStrategy ConfirmStrategy
	reconcile       Reconcile
	confirm         notify.ConfirmFunc
	keyFunc         KeyFunc
	cacheControl    string
}

type Option func(*Workflow)

func WithEditStrategy(s EditStrategy) Option {
	return func(w *Workflow) { w.editStrategy = s }
}

func WithConfirmStrategy(s ConfirmStrategy) Option {
	return func(w *Workflow) { w.confirmStrategy = s }
}

func WithReconcile(r Reconcile) Option {
	return func(w *Workflow) { w.reconcile = r }
}

// WithConfirmFunc sets the blocking dialog used by ConfirmNative
func WithConfirmFunc(f notify.ConfirmFunc) Option {
	return func(w *Workflow) { w.confirm = f }
}

func WithKeyFunc(f KeyFunc) Option {
	return func(w *Workflow) { w.keyFunc = f }
}

func WithCacheControl(cc string) Option {
	return func(w *Workflow) { w.cacheControl = cc }
}

func WithBus(bus *events.EventBus[any]) Option {
	return func(w *Workflow) { w.bus = bus }
}

// NewWorkflow creates a Workflow in idle mode. objects may be nil when image
// upload is not available.
func NewWorkflow(b backend.Backend, objects backend.ObjectStore, toaster *notify.Toaster, logger hclog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		mode:            ModeIdle,
		backend:         b,
		objects:         objects,
		toaster:         toaster,
		validation:      domain.NewValidation(),
		logger:          logger,
		editStrategy:    EditForm,
		confirmStrategy: ConfirmModal,
		reconcile:       ReconcileMixed,
		confirm:         notify.Decline,
		keyFunc:         NewObjectKey,
		cacheControl:    backend.DefaultCacheControl,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) EditStrategy() EditStrategy       { return w.editStrategy }
func (w *Workflow) ConfirmStrategy() ConfirmStrategy { return w.confirmStrategy }

// setMode must be called with the lock held
func (w *Workflow) setMode(m Mode) {
	if w.mode == m {
		return
	}
	w.bus.Publish(events.ModeChanged{From: string(w.mode), To: string(m)})
	w.mode = m
}

// Load fetches the whole collection in ascending id order. A failure replaces
// the list with the error message.
func (w *Workflow) Load(ctx context.Context) error {
	w.logger.Debug("Loading products")

	w.mu.Lock()
	prev := w.mode
	w.setMode(ModeLoading)
	w.mu.Unlock()

	products, err := w.backend.List(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = LoadErrorFallback
		}
		w.logger.Error("Unable to load products", "error", err)
		w.loadErr = msg
		if w.mode == ModeLoading {
			w.setMode(ModeError)
		}
		w.bus.Publish(events.LoadFailed{Message: msg})
		return err
	}

	sort.SliceStable(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	w.products = products
	w.loadErr = ""
	if w.mode == ModeLoading {
		if prev == ModeCreating || prev == ModeEditing {
			w.setMode(prev)
		} else {
			w.setMode(ModeList)
		}
	}
	w.bus.Publish(events.ProductsLoaded{Count: len(products)})
	return nil
}

// refetch reloads after a successful mutation. A failed load is already
// recorded in the view state, so the mutation still reports success.
func (w *Workflow) refetch(ctx context.Context, change string) {
	if err := w.Load(ctx); err != nil {
		w.logger.Warn("Reload after change failed", "change", change, "error", err)
	}
}

// Remount discards every draft and pending confirmation and loads again, the
// way the host page re-mounts the list after the standalone dialog created a
// product.
func (w *Workflow) Remount(ctx context.Context) error {
	w.mu.Lock()
	w.createDraft.Reset()
	w.editDraft.Reset()
	w.editingID = 0
	w.pendingDelete = nil
	w.setMode(ModeIdle)
	w.mu.Unlock()

	return w.Load(ctx)
}

// interactive reports whether the list or a form is on screen.
// Must be called with the lock held.
func (w *Workflow) interactive() bool {
	switch w.mode {
	case ModeList, ModeCreating, ModeEditing:
		return true
	}
	return false
}

// StartCreate opens the create form with an empty draft, leaving edit mode
func (w *Workflow) StartCreate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.interactive() {
		return notInteractive(w.mode)
	}
	w.editDraft.Reset()
	w.editingID = 0
	w.createDraft.Reset()
	w.setMode(ModeCreating)
	return nil
}

// StartEdit opens the edit form pre-populated with the cached record,
// leaving create mode
func (w *Workflow) StartEdit(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.interactive() {
		return notInteractive(w.mode)
	}
	p, ok := w.find(id)
	if !ok {
		return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}
	w.createDraft.Reset()
	w.editDraft = domain.DraftFrom(p)
	w.editingID = id
	w.setMode(ModeEditing)
	return nil
}

// Cancel leaves the create or edit form and discards its draft
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.createDraft.Reset()
	w.editDraft.Reset()
	w.editingID = 0
	if w.mode == ModeCreating || w.mode == ModeEditing {
		w.setMode(ModeList)
	}
}

// SetCreateField assigns a raw form value to the create draft
func (w *Workflow) SetCreateField(field, raw string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeCreating {
		return domain.ErrNoDraft
	}
	return w.createDraft.Set(field, raw)
}

// SetEditField assigns a raw form value to the edit draft
func (w *Workflow) SetEditField(field, raw string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.mode != ModeEditing {
		return domain.ErrNoDraft
	}
	return w.editDraft.Set(field, raw)
}

// SetField assigns a raw form value to whichever draft is open
func (w *Workflow) SetField(field, raw string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.activeDraft()
	if d == nil {
		return domain.ErrNoDraft
	}
	return d.Set(field, raw)
}

// activeDraft must be called with the lock held
func (w *Workflow) activeDraft() *domain.Draft {
	switch w.mode {
	case ModeCreating:
		return &w.createDraft
	case ModeEditing:
		return &w.editDraft
	}
	return nil
}

// Submit submits whichever form is open
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	mode := w.mode
	w.mu.Unlock()

	switch mode {
	case ModeCreating:
		return w.SubmitCreate(ctx)
	case ModeEditing:
		return w.SubmitEdit(ctx)
	}
	return domain.ErrNoDraft
}

// SubmitCreate inserts the create draft. On failure the draft is kept so the
// user can retry.
func (w *Workflow) SubmitCreate(ctx context.Context) error {
	w.mu.Lock()
	if w.mode != ModeCreating {
		w.mu.Unlock()
		return domain.ErrNoDraft
	}
	draft := w.createDraft
	w.mu.Unlock()

	if errs := w.validation.Validate(draft); len(errs) > 0 {
		return errs
	}

	w.logger.Debug("Creating product", "name", draft.Name)

	id, err := w.backend.Insert(ctx, draft.Fields())
	if err != nil {
		w.logger.Error("Unable to create product", "error", err)
		w.toaster.Error(MsgCreateFailed + err.Error())
		return err
	}

	w.toaster.Success(MsgCreated)
	w.bus.Publish(events.ProductAdded{ProductID: id, Name: draft.Name})

	w.mu.Lock()
	w.createDraft.Reset()
	if w.mode == ModeCreating {
		w.setMode(ModeList)
	}
	w.mu.Unlock()

	w.refetch(ctx, "create")
	return nil
}

// SubmitEdit sends every field of the edit draft, then re-fetches
func (w *Workflow) SubmitEdit(ctx context.Context) error {
	w.mu.Lock()
	if w.mode != ModeEditing {
		w.mu.Unlock()
		return domain.ErrNoDraft
	}
	id, draft := w.editingID, w.editDraft
	w.mu.Unlock()

	if errs := w.validation.Validate(draft); len(errs) > 0 {
		return errs
	}

	w.logger.Debug("Updating product", "id", id)

	fields := draft.Fields()
	if err := w.backend.Update(ctx, id, fields); err != nil {
		w.logger.Error("Unable to update product", "id", id, "error", err)
		w.toaster.Error(MsgUpdateFailed + err.Error())
		return err
	}

	w.toaster.Success(MsgUpdated)
	w.bus.Publish(events.ProductUpdated{ProductID: id, Columns: columns(fields)})

	w.mu.Lock()
	if w.editingID == id {
		w.editDraft.Reset()
		w.editingID = 0
	}
	if w.mode == ModeEditing {
		w.setMode(ModeList)
	}
	w.mu.Unlock()

	w.refetch(ctx, "update")
	return nil
}

// Snapshot copies the current state for rendering
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Mode:        w.mode,
		Title:       TitleList,
		ColumnCount: ColumnCount,
		Rows:        make([]Row, 0, len(w.products)),
		Error:       w.loadErr,
	}
	for _, p := range w.products {
		s.Rows = append(s.Rows, Row{
			Product:    clone(p),
			PriceLabel: p.PriceLabel(),
			StockLevel: p.StockLevel(),
		})
	}
	s.Empty = w.mode == ModeList && len(s.Rows) == 0

	switch w.mode {
	case ModeCreating:
		s.Title = TitleCreate
		s.SubmitLabel = SubmitCreateLabel
	case ModeEditing:
		s.Title = TitleEdit
		s.SubmitLabel = SubmitEditLabel
		s.EditingID = w.editingID
	}
	if d := w.activeDraft(); d != nil {
		c := *d
		s.Draft = &c
		s.ImageLabel = ImageLabel(c.ImageURL)
		s.ImageAction = UploadImageLabel
		if c.ImageURL != "" {
			s.ImageAction = ChangeImageLabel
		}
	}
	if w.pendingDelete != nil {
		id := *w.pendingDelete
		s.PendingDelete = &id
	}
	s.Toast = w.toaster.Current()
	return s
}

// find must be called with the lock held
func (w *Workflow) find(id int) (domain.Product, bool) {
	for _, p := range w.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func clone(p domain.Product) domain.Product {
	if p.ImageURL != nil {
		u := *p.ImageURL
		p.ImageURL = &u
	}
	return p
}

func columns(f domain.Fields) []string {
	cs := make([]string, 0, len(f))
	for c := range f {
		cs = append(cs, c)
	}
	sort.Strings(cs)
	return cs
}

func notInteractive(m Mode) error {
	return fmt.Errorf("%w (mode %s)", domain.ErrNotListing, m)
}
