package domain

import "errors"

// Domain-level errors
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrUnknownField      = errors.New("unknown field")
	ErrNoDraft           = errors.New("no draft is open")
	ErrBusy              = errors.New("a submission is already in progress")
	ErrNotListing        = errors.New("product list is not displayed")
	ErrNoPendingDelete   = errors.New("no delete is awaiting confirmation")
	ErrPromptCancelled   = errors.New("edit cancelled")
	ErrDialogClosed      = errors.New("dialog is closed")
	ErrObjectExists      = errors.New("the resource already exists")
	ErrObjectTooLarge    = errors.New("object exceeds the maximum allowed size")
	ErrStorageKeyInvalid = errors.New("invalid storage key")
)
