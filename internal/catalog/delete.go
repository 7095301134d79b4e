package catalog

import (
	"context"
	"fmt"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/events"
)

// RequestDelete starts the delete of a product. With ConfirmModal the id is
// recorded until ConfirmDelete or CancelDelete. With ConfirmNative the
// ConfirmFunc is asked right away, and a declined answer changes nothing.
func (w *Workflow) RequestDelete(ctx context.Context, id int) error {
	w.mu.Lock()
	if w.mode != ModeList {
		w.mu.Unlock()
		return notInteractive(w.mode)
	}
	if _, ok := w.find(id); !ok {
		w.mu.Unlock()
		return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}

	if w.confirmStrategy == ConfirmModal {
		w.pendingDelete = &id
		w.mu.Unlock()
		w.bus.Publish(events.DeleteRequested{ProductID: id})
		return nil
	}
	w.mu.Unlock()

	if !w.confirm(ctx, DeleteConfirmTitle) {
		w.logger.Debug("Delete declined", "id", id)
		return nil
	}
	return w.delete(ctx, id)
}

// ConfirmDelete deletes the product recorded by RequestDelete. The pending
// delete is cleared whatever the outcome.
func (w *Workflow) ConfirmDelete(ctx context.Context) error {
	w.mu.Lock()
	if w.pendingDelete == nil {
		w.mu.Unlock()
		return domain.ErrNoPendingDelete
	}
	id := *w.pendingDelete
	w.mu.Unlock()

	err := w.delete(ctx, id)

	w.mu.Lock()
	if w.pendingDelete != nil && *w.pendingDelete == id {
		w.pendingDelete = nil
	}
	w.mu.Unlock()
	return err
}

// CancelDelete dismisses the confirmation without a request
func (w *Workflow) CancelDelete() {
	w.mu.Lock()
	w.pendingDelete = nil
	w.mu.Unlock()
}

func (w *Workflow) delete(ctx context.Context, id int) error {
	w.logger.Debug("Deleting product", "id", id)

	if err := w.backend.Delete(ctx, id); err != nil {
		w.logger.Error("Unable to delete product", "id", id, "error", err)
		w.toaster.Error(MsgDeleteFailed + err.Error())
		return err
	}

	w.bus.Publish(events.ProductDeleted{ProductID: id})

	if w.reconcile == ReconcileRefetch {
		w.toaster.Success(MsgDeleted)
		w.refetch(ctx, "delete")
		return nil
	}

	w.mu.Lock()
	kept := w.products[:0:0]
	for _, p := range w.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	w.products = kept
	w.mu.Unlock()

	w.toaster.Success(MsgDeleted)
	return nil
}
