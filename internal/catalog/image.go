package catalog

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"io"
	"path"
	"regexp"
	"strings"
)

// ErrNoObjectStore is returned by AttachImage when uploads are not configured
var ErrNoObjectStore = errors.New("image upload is not configured")

// KeyFunc derives the storage key of an uploaded file from its name
type KeyFunc func(filename string) string

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewObjectKey returns product-{uuid}-{filename} with the filename reduced to
// characters safe in a storage key
func NewObjectKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Trim(unsafeKeyChars.ReplaceAllString(name, "_"), "_.")
	if name == "" {
		name = "image"
	}
	return "product-" + uuid.NewString() + "-" + name
}

// Attachment is a locally selected image file
type Attachment struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachImage uploads a file and stores its public URL in the open draft.
// A failed upload keeps whatever image the draft had.
func (w *Workflow) AttachImage(ctx context.Context, a Attachment) (string, error) {
	w.mu.Lock()
	mode := w.mode
	hasDraft := w.activeDraft() != nil
	w.mu.Unlock()

	if !hasDraft {
		return "", domain.ErrNoDraft
	}
	if w.objects == nil {
		return "", ErrNoObjectStore
	}

	key := w.keyFunc(a.Filename)
	w.logger.Debug("Uploading image", "key", key)

	stored, err := w.objects.Upload(ctx, key, a.Body, backend.UploadOptions{
		CacheControl: w.cacheControl,
		Upsert:       false,
		ContentType:  a.ContentType,
	})
	if err != nil {
		w.logger.Error("Unable to upload image", "key", key, "error", err)
		w.toaster.Error(MsgUploadFailed + err.Error())
		return "", err
	}

	url := w.objects.PublicURL(stored)

	w.mu.Lock()
	// the form may have been left while uploading
	if w.mode == mode {
		if d := w.activeDraft(); d != nil {
			d.ImageURL = url
		}
	}
	w.mu.Unlock()

	w.bus.Publish(events.ImageAttached{URL: url})
	return url, nil
}

// RemoveImage clears the open draft's image. The stored object is left in place.
func (w *Workflow) RemoveImage() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := w.activeDraft()
	if d == nil {
		return domain.ErrNoDraft
	}
	d.ImageURL = ""
	return nil
}
