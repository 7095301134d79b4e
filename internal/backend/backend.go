// Package backend defines the collaborators the catalog workflow talks to: a
// row store for the products collection and an object store for images.
package backend

import (
	"context"
	"fmt"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"io"
	"net/http"
)

// Defaults used by the dashboard
const (
	DefaultTable        = "products"
	DefaultBucket       = "productos"
	DefaultCacheControl = "3600"
)

// Backend is the products collection of the hosted database
type Backend interface {
	// List returns every row ordered by ascending id
	List(ctx context.Context) ([]domain.Product, error)
	// Insert stores a new row and returns the id the backend assigned
	Insert(ctx context.Context, fields domain.Fields) (int, error)
	// Update overwrites the given columns of row id
	Update(ctx context.Context, id int, fields domain.Fields) error
	Delete(ctx context.Context, id int) error
}

// UploadOptions mirror the storage API upload options
type UploadOptions struct {
	CacheControl string
	Upsert       bool
	ContentType  string
}

// ObjectStore is the file storage of the hosted service
type ObjectStore interface {
	// Upload stores body under key and returns the stored path
	Upload(ctx context.Context, key string, body io.Reader, opts UploadOptions) (string, error)
	// PublicURL resolves a stored path to a publicly accessible URL
	PublicURL(path string) string
}

// APIError is an error reported by the hosted service. Message is passed
// through verbatim.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}
