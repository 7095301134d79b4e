package http

import (
	"encoding/json"
	"errors"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/catalog"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/notify"
	"net/http"
	"strconv"
)

// CatalogHandler drives the catalog workflow and the standalone dialog
type CatalogHandler struct {
	workflow *catalog.Workflow
	dialog   *catalog.Dialog
	logger   hclog.Logger
}

func NewCatalogHandler(w *catalog.Workflow, d *catalog.Dialog, log hclog.Logger) *CatalogHandler {
	return &CatalogHandler{
		workflow: w,
		dialog:   d,
		logger:   log,
	}
}

// FieldChange sets one draft field from raw form input
type FieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// PromptAnswers are the replies to the inline edit prompts. A missing answer
// cancels the edit.
type PromptAnswers struct {
	Name  *string `json:"name"`
	Price *string `json:"price"`
	Stock *string `json:"stock"`
}

func (a PromptAnswers) answers() catalog.Answers {
	out := catalog.Answers{}
	if a.Name != nil {
		out[catalog.PromptName] = *a.Name
	}
	if a.Price != nil {
		out[catalog.PromptPrice] = *a.Price
	}
	if a.Stock != nil {
		out[catalog.PromptStock] = *a.Stock
	}
	return out
}

// GetCatalog handles GET /catalog
//
// swagger:route GET /catalog catalog getCatalog
//
// Returns the current view state of the catalog.
//
// Responses:
//
//	200: snapshotResponse
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workflow.Snapshot())
}

// Reload handles POST /catalog/reload
//
// swagger:route POST /catalog/reload catalog reloadCatalog
//
// Fetches the product list from the backend.
//
// Responses:
//
//	200: snapshotResponse
//	502: errorResponse
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.Load(r.Context()))
}

// StartCreate handles POST /catalog/create
//
// swagger:route POST /catalog/create catalog startCreate
//
// Opens the create form with an empty draft.
//
// Responses:
//
//	200: snapshotResponse
//	409: errorResponse
func (h *CatalogHandler) StartCreate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.StartCreate())
}

// PatchDraft handles PATCH /catalog/draft
//
// swagger:route PATCH /catalog/draft catalog patchDraft
//
// Applies field changes to the open create or edit draft.
//
// Responses:
//
//	200: snapshotResponse
//	400: errorResponse
//	409: errorResponse
func (h *CatalogHandler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	changes, ok := h.decodeChanges(w, r)
	if !ok {
		return
	}
	for _, c := range changes {
		if err := h.workflow.SetField(c.Field, c.Value); err != nil {
			h.respond(w, err)
			return
		}
	}
	h.respond(w, nil)
}

// SubmitDraft handles POST /catalog/draft/submit
//
// swagger:route POST /catalog/draft/submit catalog submitDraft
//
// Creates or updates the product of the open draft.
//
// Responses:
//
//	200: snapshotResponse
//	409: errorResponse
//	422: validationErrorResponse
//	502: errorResponse
func (h *CatalogHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.Submit(r.Context()))
}

// Cancel handles POST /catalog/cancel
//
// swagger:route POST /catalog/cancel catalog cancelDraft
//
// Leaves the create or edit form.
//
// Responses:
//
//	200: snapshotResponse
func (h *CatalogHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.workflow.Cancel()
	h.respond(w, nil)
}

// EditProduct handles POST /catalog/products/{id}/edit
//
// swagger:route POST /catalog/products/{id}/edit catalog editProduct
//
// Opens the edit form, or with the prompt strategy applies the answers
// in the request body.
//
// Responses:
//
//	200: snapshotResponse
//	400: errorResponse
//	404: errorResponse
//	409: errorResponse
//	502: errorResponse
func (h *CatalogHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if h.workflow.EditStrategy() != catalog.EditPrompt {
		h.respond(w, h.workflow.StartEdit(id))
		return
	}

	var answers PromptAnswers
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			h.logger.Error("Error decoding prompt answers", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid prompt answers")
			return
		}
	}
	h.respond(w, h.workflow.QuickEdit(r.Context(), id, answers.answers()))
}

// DeleteProduct handles POST /catalog/products/{id}/delete
//
// swagger:route POST /catalog/products/{id}/delete catalog deleteProduct
//
// Asks for confirmation to delete a product. With the native strategy the
// confirm query parameter is the answer.
//
// Responses:
//
//	200: snapshotResponse
//	400: errorResponse
//	404: errorResponse
//	409: errorResponse
//	502: errorResponse
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if v := r.URL.Query().Get("confirm"); v != "" {
		yes, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid confirm parameter")
			return
		}
		ctx = notify.WithAnswer(ctx, yes)
	}
	h.respond(w, h.workflow.RequestDelete(ctx, id))
}

// ConfirmDelete handles POST /catalog/delete/confirm
//
// swagger:route POST /catalog/delete/confirm catalog confirmDelete
//
// Deletes the product awaiting confirmation.
//
// Responses:
//
//	200: snapshotResponse
//	409: errorResponse
//	502: errorResponse
func (h *CatalogHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.ConfirmDelete(r.Context()))
}

// CancelDelete handles POST /catalog/delete/cancel
//
// swagger:route POST /catalog/delete/cancel catalog cancelDelete
//
// Dismisses the delete confirmation.
//
// Responses:
//
//	200: snapshotResponse
func (h *CatalogHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.workflow.CancelDelete()
	h.respond(w, nil)
}

// GetDialog handles GET /dialog
//
// swagger:route GET /dialog dialog getDialog
//
// Returns the state of the create dialog.
//
// Responses:
//
//	200: dialogResponse
func (h *CatalogHandler) GetDialog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dialog.State())
}

// OpenDialog handles POST /dialog/open
//
// swagger:route POST /dialog/open dialog openDialog
//
// Responses:
//
//	200: dialogResponse
func (h *CatalogHandler) OpenDialog(w http.ResponseWriter, r *http.Request) {
	h.dialog.Open()
	h.respondDialog(w, nil)
}

// CloseDialog handles POST /dialog/close
//
// swagger:route POST /dialog/close dialog closeDialog
//
// Responses:
//
//	200: dialogResponse
func (h *CatalogHandler) CloseDialog(w http.ResponseWriter, r *http.Request) {
	h.dialog.Close()
	h.respondDialog(w, nil)
}

// PatchDialog handles PATCH /dialog/draft
//
// swagger:route PATCH /dialog/draft dialog patchDialog
//
// Responses:
//
//	200: dialogResponse
//	400: errorResponse
//	409: errorResponse
func (h *CatalogHandler) PatchDialog(w http.ResponseWriter, r *http.Request) {
	changes, ok := h.decodeChanges(w, r)
	if !ok {
		return
	}
	for _, c := range changes {
		if err := h.dialog.Set(c.Field, c.Value); err != nil {
			h.respondDialog(w, err)
			return
		}
	}
	h.respondDialog(w, nil)
}

// SubmitDialog handles POST /dialog/submit
//
// swagger:route POST /dialog/submit dialog submitDialog
//
// Creates the product of the dialog and reloads the catalog.
//
// Responses:
//
//	200: dialogResponse
//	409: errorResponse
//	422: validationErrorResponse
//	502: errorResponse
func (h *CatalogHandler) SubmitDialog(w http.ResponseWriter, r *http.Request) {
	h.respondDialog(w, h.dialog.Submit(r.Context()))
}

func (h *CatalogHandler) productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return 0, false
	}
	return id, true
}

func (h *CatalogHandler) decodeChanges(w http.ResponseWriter, r *http.Request) ([]FieldChange, bool) {
	var changes []FieldChange
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.logger.Error("Error decoding field changes", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid field changes")
		return nil, false
	}
	return changes, true
}

// respond writes the catalog snapshot with the status matching err
func (h *CatalogHandler) respond(w http.ResponseWriter, err error) {
	if err == nil || errors.Is(err, domain.ErrPromptCancelled) {
		writeJSON(w, http.StatusOK, h.workflow.Snapshot())
		return
	}
	s := h.workflow.Snapshot()
	h.writeFailure(w, err, &s)
}

// respondDialog writes the dialog state with the status matching err
func (h *CatalogHandler) respondDialog(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, h.dialog.State())
		return
	}
	s := h.dialog.State()
	h.writeFailure(w, err, &s)
}

func (h *CatalogHandler) writeFailure(w http.ResponseWriter, err error, state any) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationError{Messages: verrs.Messages()})
		return
	}

	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Backend request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Message: err.Error(), State: state})
}

// StatusFor maps workflow errors to HTTP status codes. Anything unknown is
// a failed backend call.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoDraft),
		errors.Is(err, domain.ErrNotListing),
		errors.Is(err, domain.ErrNoPendingDelete),
		errors.Is(err, domain.ErrDialogClosed),
		errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrObjectExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrObjectTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrStorageKeyInvalid):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNoObjectStore):
		return http.StatusNotImplemented
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}
