// Package storage provides a filesystem ObjectStore that the admin server
// exposes under a public URL prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// tempPrefix names uploads still being written. They are never served.
const tempPrefix = "temp-"

// Local stores objects below basePath
type Local struct {
	maxFileSize int64 // Maximum number of bytes for an object
	basePath    string
	publicBase  string
}

// NewLocal creates a new Local store.
// basePath is the directory to save the objects to,
// publicBase is the URL prefix the objects are served from,
// maxSize is the max number of bytes that an object can be.
func NewLocal(basePath, publicBase string, maxSize int64) (*Local, error) {
	p, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p, os.ModePerm); err != nil {
		return nil, fmt.Errorf("unable to create directory: %w", err)
	}

	return &Local{basePath: p, publicBase: strings.TrimRight(publicBase, "/"), maxFileSize: maxSize}, nil
}

// Upload writes body to a temporary file and moves it into place once it is
// complete. An existing object is only replaced when opts.Upsert is set.
func (l *Local) Upload(ctx context.Context, key string, body io.Reader, opts backend.UploadOptions) (string, error) {
	fp, err := l.fullPath(key)
	if err != nil {
		return "", err
	}

	if !opts.Upsert {
		if _, err := os.Stat(fp); err == nil {
			return "", domain.ErrObjectExists
		}
	}

	// Get the directory of the file
	dir := filepath.Dir(fp)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("unable to create directory: %w", err)
	}

	// Create a temporary file in the same directory so the rename is atomic
	tempFile, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("unable to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	// Ensure the temporary file is deleted if the function returns early
	defer os.Remove(tempPath)

	// Read one byte past the limit to detect oversized bodies
	written, err := io.Copy(tempFile, io.LimitReader(&ctxReader{ctx: ctx, r: body}, l.maxFileSize+1))
	if err != nil {
		tempFile.Close()
		return "", fmt.Errorf("unable to write to file: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		return "", fmt.Errorf("unable to close temporary file: %w", err)
	}

	if written > l.maxFileSize {
		return "", fmt.Errorf("%w of %d bytes", domain.ErrObjectTooLarge, l.maxFileSize)
	}

	if !opts.Upsert {
		// another upload may have claimed the key meanwhile
		if err := os.Link(tempPath, fp); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return "", domain.ErrObjectExists
			}
			return "", fmt.Errorf("unable to move temporary file to final location: %w", err)
		}
		return l.cleanKey(key), nil
	}

	if err := os.Rename(tempPath, fp); err != nil {
		return "", fmt.Errorf("unable to move temporary file to final location: %w", err)
	}

	return l.cleanKey(key), nil
}

// PublicURL returns the URL the object at p is served from
func (l *Local) PublicURL(p string) string {
	return l.publicBase + "/" + l.cleanKey(p)
}

// Open returns the stored object at p
func (l *Local) Open(p string) (*os.File, error) {
	fp, err := l.fullPath(p)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(filepath.Base(fp), tempPrefix) {
		return nil, fmt.Errorf("unable to open the file: %w", fs.ErrNotExist)
	}

	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("unable to open the file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to stat the file: %w", err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("unable to open the file: %s is a directory: %w", p, fs.ErrNotExist)
	}

	return f, nil
}

func (l *Local) cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// fullPath resolves key below the base path and rejects keys escaping it
func (l *Local) fullPath(key string) (string, error) {
	clean := l.cleanKey(key)
	if clean == "" || clean == "." {
		return "", domain.ErrStorageKeyInvalid
	}
	return filepath.Join(l.basePath, filepath.FromSlash(clean)), nil
}

// ctxReader stops reading once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
