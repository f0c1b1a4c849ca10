// Package remote implements the remote store backend: every operation is
// translated into a call against the library API's resource collections.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/biblio/internal/logging"
	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Operation names reported in APIError.Op.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpProbe  = "probe"
)

// Client is the remote implementation of types.Backend. It performs no
// validation and passes identifiers and payloads through unmodified.
type Client struct {
	base string
	http *http.Client
	log  *zap.SugaredLogger
}

var _ types.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = logging.OrNop(log) }
}

// New returns a client for the API rooted at base, e.g.
// http://127.0.0.1:4000/api.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{},
		log:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the API base URL.
func (c *Client) Base() string { return c.base }

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client { return c.http }

// List fetches every record of a collection.
func (c *Client) List(ctx context.Context, entity string) ([]types.Record, error) {
	var out []types.Record
	if err := c.do(ctx, OpList, entity, http.MethodGet, c.path(entity), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.Record{}
	}
	return out, nil
}

// Get fetches one record. A 404 matches types.ErrNotFound.
func (c *Client) Get(ctx context.Context, entity, id string) (types.Record, error) {
	var out types.Record
	if err := c.do(ctx, OpGet, entity, http.MethodGet, c.path(entity, id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new record; the service assigns its identifier.
func (c *Client) Create(ctx context.Context, entity string, fields types.Record) (types.Record, error) {
	var out types.Record
	if err := c.do(ctx, OpCreate, entity, http.MethodPost, c.path(entity), fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, entity, id string, partial types.Record) (types.Record, error) {
	var out types.Record
	if err := c.do(ctx, OpUpdate, entity, http.MethodPut, c.path(entity, id), partial, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	return c.do(ctx, OpDelete, entity, http.MethodDelete, c.path(entity, id), nil, nil)
}

// Probe performs one lightweight read of the member list. It returns nil iff
// the service answered with a 2xx status.
func (c *Client) Probe(ctx context.Context) error {
	return c.do(ctx, OpProbe, types.CollectionMembers, http.MethodGet, c.path(types.CollectionMembers), nil, nil)
}

func (c *Client) path(entity string, id ...string) string {
	p := c.base + "/" + url.PathEscape(entity)
	if len(id) > 0 {
		p += "/" + url.PathEscape(id[0])
	}
	return p
}

// do performs one request. body is encoded as JSON when non-nil; a 2xx
// response is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, entity, method, target string, body any, out any) error {
	fail := func(status int, err error) error {
		return &types.APIError{Op: op, Entity: entity, Status: status, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := gojson.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("encoding body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("request failed", "op", op, "entity", entity, "error", err)
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Debugw("request rejected", "op", op, "entity", entity, "status", resp.StatusCode)
		return fail(resp.StatusCode, nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := gojson.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
