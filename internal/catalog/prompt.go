package catalog

import (
	"context"
	"fmt"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"strconv"
)

// Prompter asks for a single line of text pre-filled with def. ok is false
// when the user cancelled.
type Prompter interface {
	Prompt(ctx context.Context, message, def string) (answer string, ok bool)
}

// PromptFunc adapts a function to the Prompter interface
type PromptFunc func(ctx context.Context, message, def string) (string, bool)

func (f PromptFunc) Prompt(ctx context.Context, message, def string) (string, bool) {
	return f(ctx, message, def)
}

// Answers is a Prompter that replies with pre-collected values keyed by
// prompt message. A missing answer is a cancel.
type Answers map[string]string

func (a Answers) Prompt(_ context.Context, message, _ string) (string, bool) {
	v, ok := a[message]
	return v, ok
}

// QuickEdit asks for a new name, price and stock in turn and sends only
// those three columns. Cancelling any prompt aborts without a request.
func (w *Workflow) QuickEdit(ctx context.Context, id int, p Prompter) error {
	w.mu.Lock()
	if w.mode != ModeList {
		w.mu.Unlock()
		return notInteractive(w.mode)
	}
	current, ok := w.find(id)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}

	name, ok := p.Prompt(ctx, PromptName, current.Name)
	if !ok {
		return domain.ErrPromptCancelled
	}
	price, ok := p.Prompt(ctx, PromptPrice, strconv.FormatFloat(current.Price, 'f', -1, 64))
	if !ok {
		return domain.ErrPromptCancelled
	}
	stock, ok := p.Prompt(ctx, PromptStock, strconv.Itoa(current.Stock))
	if !ok {
		return domain.ErrPromptCancelled
	}

	draft := domain.Draft{Name: name, Price: domain.ParsePrice(price), Stock: domain.ParseStock(stock)}
	fields := draft.QuickFields()

	w.logger.Debug("Quick editing product", "id", id)

	if err := w.backend.Update(ctx, id, fields); err != nil {
		w.logger.Error("Unable to update product", "id", id, "error", err)
		w.toaster.Error(MsgUpdateFailed + err.Error())
		return err
	}

	w.bus.Publish(events.ProductUpdated{ProductID: id, Columns: columns(fields)})

	if w.reconcile == ReconcileRefetch {
		w.toaster.Success(MsgUpdated)
		w.refetch(ctx, "quick edit")
		return nil
	}

	w.mu.Lock()
	for i := range w.products {
		if w.products[i].ID == id {
			w.products[i].Apply(fields)
		}
	}
	w.mu.Unlock()

	w.toaster.Success(MsgUpdated)
	return nil
}
