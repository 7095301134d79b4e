package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a hosted database-as-a-service exposing a PostgREST data
// API under /rest/v1 and a storage API under /storage/v1.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     hclog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL, apiKey string, log hclog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns a Backend bound to the named table
func (c *Client) Table(name string) *Table {
	return &Table{client: c, name: name}
}

// Bucket returns an ObjectStore bound to the named storage bucket
func (c *Client) Bucket(name string) *Bucket {
	return &Bucket{client: c, name: name}
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

// do sends req and decodes a JSON response into out when out is not nil.
// Non-2xx responses become *APIError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}
	return nil
}

// decodeError reads the PostgREST or storage error body. Storage reports its
// status code as a string in the body, PostgREST does not.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var payload struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Details string          `json:"details"`
		Hint    string          `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Message = payload.Message
	if apiErr.Message == "" {
		apiErr.Message = payload.Error
	}
	apiErr.Details = payload.Details
	apiErr.Hint = payload.Hint
	if len(payload.Code) > 0 {
		var code string
		if json.Unmarshal(payload.Code, &code) == nil {
			apiErr.Code = code
		} else {
			apiErr.Code = string(payload.Code)
		}
	}
	return apiErr
}

// Table is a Backend over the PostgREST data API
type Table struct {
	client *Client
	name   string
}

func (t *Table) endpoint(query url.Values) string {
	u := t.client.baseURL + "/rest/v1/" + url.PathEscape(t.name)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func idFilter(id int) url.Values {
	return url.Values{"id": {"eq." + strconv.Itoa(id)}}
}

func (t *Table) List(ctx context.Context) ([]domain.Product, error) {
	t.client.log.Debug("Listing rows", "table", t.name)

	req, err := t.client.newRequest(ctx, http.MethodGet, t.endpoint(url.Values{
		"select": {"*"},
		"order":  {"id.asc"},
	}), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var rows []domain.Product
	if err := t.client.do(req, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Product{}
	}
	return rows, nil
}

func (t *Table) Insert(ctx context.Context, fields domain.Fields) (int, error) {
	t.client.log.Debug("Inserting row", "table", t.name)

	body, err := json.Marshal([]domain.Fields{fields})
	if err != nil {
		return 0, fmt.Errorf("unable to encode row: %w", err)
	}

	req, err := t.client.newRequest(ctx, http.MethodPost, t.endpoint(nil), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var rows []domain.Product
	if err := t.client.do(req, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert into %s returned no row", t.name)
	}
	return rows[0].ID, nil
}

func (t *Table) Update(ctx context.Context, id int, fields domain.Fields) error {
	t.client.log.Debug("Updating row", "table", t.name, "id", id)

	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("unable to encode row: %w", err)
	}

	// A filter matching no row is still a success
	req, err := t.client.newRequest(ctx, http.MethodPatch, t.endpoint(idFilter(id)), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	return t.client.do(req, nil)
}

func (t *Table) Delete(ctx context.Context, id int) error {
	t.client.log.Debug("Deleting row", "table", t.name, "id", id)

	req, err := t.client.newRequest(ctx, http.MethodDelete, t.endpoint(idFilter(id)), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	return t.client.do(req, nil)
}
