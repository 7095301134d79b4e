// Package classification of Catalog Admin API
//
// # Documentation for Catalog Admin API
//
// Drives the product catalog admin screen: list, create, edit and delete
// products, attach images and follow changes over /ws.
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import "github.com/kahvecikaan/catalog-admin/internal/catalog"

// NOTE: Types defined here are purely for documentation purposes
// unless noted otherwise

// Error message, with the view state when the failure left one
// swagger:response errorResponse
type errorResponseWrapper struct {
	// Description of the error
	// in: body
	Body ErrorResponse
}

// Validation errors defined as an array of strings
// swagger:response validationErrorResponse
type validationErrorResponseWrapper struct {
	// Collection of the errors
	// in: body
	Body ValidationError
}

// The view state of the catalog
// swagger:response snapshotResponse
type snapshotResponseWrapper struct {
	// in: body
	Body catalog.Snapshot
}

// The state of the create dialog
// swagger:response dialogResponse
type dialogResponseWrapper struct {
	// in: body
	Body catalog.DialogState
}

// The stored image
// swagger:response imageResponse
type imageResponseWrapper struct {
	// in: body
	Body []byte
}

// swagger:parameters editProduct deleteProduct
type productIDParamsWrapper struct {
	// The ID of the product
	// in: path
	// required: true
	ID int `json:"id"`
}

// swagger:parameters deleteProduct
type confirmParamsWrapper struct {
	// Answer to the native confirmation dialog
	// in: query
	Confirm bool `json:"confirm"`
}

// swagger:parameters patchDraft patchDialog
type fieldChangesParamsWrapper struct {
	// Raw form values. Invalid numbers are stored as 0.
	// in: body
	// required: true
	Body []FieldChange
}

// swagger:parameters editProduct
type promptAnswersParamsWrapper struct {
	// Replies to the inline edit prompts, used with the prompt strategy
	// in: body
	Body PromptAnswers
}

// swagger:parameters uploadImage
type uploadParamsWrapper struct {
	// The image file
	// in: formData
	// required: true
	// swagger:file
	File []byte `json:"file"`
}

// swagger:parameters getImage
type imagePathParamsWrapper struct {
	// Path of the stored image
	// in: path
	// required: true
	Path string `json:"path"`
}

// ErrorResponse defines the structure for API error responses. It is
// written by the handlers.
//
// swagger:model
type ErrorResponse struct {
	// The error message
	//
	// required: true
	Message string `json:"message"`

	// The view state after the failure
	State any `json:"state,omitempty"`
}

// ValidationError defines the structure for API validation error responses
//
// swagger:model
type ValidationError struct {
	// The validation errors
	//
	// required: true
	Messages []string `json:"messages"`
}
