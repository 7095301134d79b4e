package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Bucket is an ObjectStore over the storage API
type Bucket struct {
	client *Client
	name   string
}

// escapePath escapes every segment of an object path, keeping the separators
func escapePath(p string) string {
	segments := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (b *Bucket) Upload(ctx context.Context, key string, body io.Reader, opts UploadOptions) (string, error) {
	b.client.log.Debug("Uploading object", "bucket", b.name, "key", key)

	endpoint := b.client.baseURL + "/storage/v1/object/" + url.PathEscape(b.name) + "/" + escapePath(key)
	req, err := b.client.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}

	cacheControl := opts.CacheControl
	if cacheControl == "" {
		cacheControl = DefaultCacheControl
	}
	req.Header.Set("Cache-Control", "max-age="+cacheControl)
	req.Header.Set("X-Upsert", strconv.FormatBool(opts.Upsert))
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	} else {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	var stored struct {
		Key string `json:"Key"`
	}
	if err := b.client.do(req, &stored); err != nil {
		b.client.log.Error("Unable to upload object", "bucket", b.name, "key", key, "error", err)
		return "", err
	}

	// the service answers with "<bucket>/<path>"; callers want the path
	path := strings.TrimPrefix(stored.Key, b.name+"/")
	if path == "" {
		path = strings.TrimLeft(key, "/")
	}
	return path, nil
}

func (b *Bucket) PublicURL(path string) string {
	return b.client.baseURL + "/storage/v1/object/public/" + url.PathEscape(b.name) + "/" + escapePath(path)
}
