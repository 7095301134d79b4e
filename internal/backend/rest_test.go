package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "anon-key", hclog.NewNullLogger())
}

func TestTableList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/products", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "id.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":1,"name":"Latte","description":null,"price":2.45,"stock":12,"image_url":null},
			{"id":2,"name":"Mug","description":"Big","price":5,"stock":0,"image_url":"https://x/m.png"}
		]`)
	})

	products, err := c.Table(DefaultTable).List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Latte", products[0].Name)
	assert.Nil(t, products[0].ImageURL)
	assert.Equal(t, "https://x/m.png", products[1].Image())
}

func TestTableListEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	products, err := c.Table(DefaultTable).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestTableInsertSendsNullImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var rows []map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		if assert.Len(t, rows, 1) {
			assert.Equal(t, "Widget", rows[0]["name"])
			v, ok := rows[0]["image_url"]
			assert.True(t, ok)
			assert.Nil(t, v)
		}

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{"id":42,"name":"Widget","price":9.99,"stock":5,"image_url":null}]`)
	})

	id, err := c.Table(DefaultTable).Insert(context.Background(),
		domain.Draft{Name: "Widget", Price: 9.99, Stock: 5}.Fields())
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestTableUpdateAndDeleteFilterByID(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		assert.Equal(t, "eq.42", r.URL.Query().Get("id"))
		if r.Method == http.MethodPatch {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body, 3)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	tbl := c.Table(DefaultTable)
	require.NoError(t, tbl.Update(context.Background(), 42, domain.Draft{Name: "W"}.QuickFields()))
	require.NoError(t, tbl.Delete(context.Background(), 42))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestTableNoRowsMatched(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusNoContent)
	})

	tbl := c.Table(DefaultTable)
	assert.NoError(t, tbl.Update(context.Background(), 7, domain.Fields{}))
	assert.NoError(t, tbl.Delete(context.Background(), 7))
}

func TestAPIErrorMessageIsPassedThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":"23502","message":"null value in column \"name\" violates not-null constraint","details":null,"hint":null}`)
	})

	_, err := c.Table(DefaultTable).Insert(context.Background(), domain.Fields{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "23502", apiErr.Code)
	assert.Equal(t, `null value in column "name" violates not-null constraint`, err.Error())
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Table(DefaultTable).List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Service Unavailable", err.Error())
}

func TestBucketUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/v1/object/productos/product-abc-photo.png", r.URL.Path)
		assert.Equal(t, "max-age=3600", r.Header.Get("Cache-Control"))
		assert.Equal(t, "false", r.Header.Get("X-Upsert"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))

		io.WriteString(w, `{"Key":"productos/product-abc-photo.png","Id":"b3c1"}`)
	})

	b := c.Bucket(DefaultBucket)
	path, err := b.Upload(context.Background(), "product-abc-photo.png", strings.NewReader("png-bytes"),
		UploadOptions{CacheControl: DefaultCacheControl, ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "product-abc-photo.png", path)
	assert.True(t, strings.HasSuffix(b.PublicURL(path), "/storage/v1/object/public/productos/product-abc-photo.png"))
}

func TestBucketUploadDuplicate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`)
	})

	_, err := c.Bucket(DefaultBucket).Upload(context.Background(), "a.png", strings.NewReader("x"), UploadOptions{})
	require.Error(t, err)
	assert.Equal(t, "The resource already exists", err.Error())
}

func TestPublicURLEscapesSegments(t *testing.T) {
	c := NewClient("https://project.example.co", "k", hclog.NewNullLogger())
	assert.Equal(t,
		"https://project.example.co/storage/v1/object/public/productos/dir/my%20photo.png",
		c.Bucket(DefaultBucket).PublicURL("dir/my photo.png"))
}
