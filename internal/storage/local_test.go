package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocal(t *testing.T, max int64) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), "http://localhost:9090/images/", max)
	require.NoError(t, err)
	return l
}

func TestLocalUploadAndOpen(t *testing.T) {
	l := setupLocal(t, 1024)

	p, err := l.Upload(context.Background(), "productos/product-1-photo.png", strings.NewReader("image"), backend.UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "productos/product-1-photo.png", p)
	assert.Equal(t, "http://localhost:9090/images/productos/product-1-photo.png", l.PublicURL(p))

	f, err := l.Open(p)
	require.NoError(t, err)
	defer f.Close()

	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "image", string(b))
}

func TestLocalRefusesOverwriteWithoutUpsert(t *testing.T) {
	l := setupLocal(t, 1024)
	ctx := context.Background()

	_, err := l.Upload(ctx, "a.png", strings.NewReader("one"), backend.UploadOptions{})
	require.NoError(t, err)

	_, err = l.Upload(ctx, "a.png", strings.NewReader("two"), backend.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrObjectExists)

	_, err = l.Upload(ctx, "a.png", strings.NewReader("three"), backend.UploadOptions{Upsert: true})
	require.NoError(t, err)

	f, err := l.Open("a.png")
	require.NoError(t, err)
	defer f.Close()
	b, _ := io.ReadAll(f)
	assert.Equal(t, "three", string(b))
}

func TestLocalMaxSize(t *testing.T) {
	l := setupLocal(t, 4)

	_, err := l.Upload(context.Background(), "big.png", strings.NewReader("12345"), backend.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrObjectTooLarge)

	_, err = l.Open("big.png")
	assert.Error(t, err, "a rejected upload leaves nothing behind")

	_, err = l.Upload(context.Background(), "ok.png", strings.NewReader("1234"), backend.UploadOptions{})
	assert.NoError(t, err)
}

func TestLocalKeysStayInsideBase(t *testing.T) {
	l := setupLocal(t, 1024)

	p, err := l.Upload(context.Background(), "../../etc/evil.png", strings.NewReader("x"), backend.UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "etc/evil.png", p)

	_, err = l.Upload(context.Background(), "/", strings.NewReader("x"), backend.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrStorageKeyInvalid)
}

func TestLocalCancelledUpload(t *testing.T) {
	l := setupLocal(t, 1024)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Upload(ctx, "c.png", strings.NewReader("x"), backend.UploadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalOpenOnlyServesStoredObjects(t *testing.T) {
	l := setupLocal(t, 1024)
	_, err := l.Upload(context.Background(), "productos/product-1-photo.png", strings.NewReader("image"), backend.UploadOptions{})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(l.basePath, "productos", "temp-123"), []byte("partial"), 0644))

	testCases := []struct {
		name string
		key  string
	}{
		{"Directory", "productos"},
		{"Base directory", "/"},
		{"Upload in progress", "productos/temp-123"},
		{"Missing object", "productos/nope.png"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := l.Open(tc.key)
			assert.Error(t, err)
			assert.Nil(t, f)
		})
	}
}
