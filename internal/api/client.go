// Package api is the HTTP client for a schema service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"schemaview/internal/column"
	"schemaview/internal/logger"
	"schemaview/internal/query"
	"schemaview/internal/table"
)

// ResponseError is returned when the service answers with a non-2xx status.
type ResponseError struct {
	Status int
	Body   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("service returned %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// Client talks to the service at URL.
type Client struct {
	URL    string
	http   *http.Client
	policy column.NumberPolicy
	log    *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithNumberPolicy selects how numbers in rows are typed.
func WithNumberPolicy(p column.NumberPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// New returns a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		URL:  strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.With("component", "api", "url", c.URL)
	return c
}

// Schemas fetches the raw table schemas.
func (c *Client) Schemas(ctx context.Context) ([]table.Schema, error) {
	body, err := c.do(ctx, "/api/tables", nil)
	if err != nil {
		return nil, err
	}
	var tables []table.Schema
	if err := json.Unmarshal(body, &tables); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return tables, nil
}

// Tables fetches the schemas and resolves them into definitions. When some
// tables cannot be attached to a root the definitions are returned together
// with a *table.SchemaError.
func (c *Client) Tables(ctx context.Context) ([]table.Definition, error) {
	tables, err := c.Schemas(ctx)
	if err != nil {
		return nil, err
	}
	defs, err := table.Definitions(tables)
	c.log.Debugw("resolved tables", "tables", len(tables), "definitions", len(defs))
	return defs, err
}

// Get fetches rows of tableID according to sel.
func (c *Client) Get(ctx context.Context, tableID string, sel query.Selection) ([]column.Entry, error) {
	reqBody, err := sel.Body()
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	body, err := c.do(ctx, sel.Path(tableID), reqBody)
	if err != nil {
		return nil, err
	}
	entries, err := c.policy.DecodeEntries(body, sel.Single())
	if err != nil {
		return nil, err
	}
	c.log.Debugw("fetched rows", "table", tableID, "selection", sel.String(), "rows", len(entries))
	return entries, nil
}

// do sends a GET request, with reqBody when not nil, and returns the response
// body of a successful response.
func (c *Client) do(ctx context.Context, path string, reqBody []byte) ([]byte, error) {
	var rd io.Reader
	if reqBody != nil {
		rd = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warnw("request failed", "path", path, "status", resp.StatusCode)
		return nil, &ResponseError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
