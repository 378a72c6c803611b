// Package client talks to the employee REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/models"
	"github.com/noah-isme/employee-admin/pkg/middleware/requestid"
)

const resourcePath = "/api/employees"

// Observer receives the outcome of every API call.
type Observer interface {
	ObserveAPICall(operation string, err error, duration time.Duration)
}

// Client issues requests against one employee API base URL. It never retries
// and sets no timeout of its own; callers bound calls through ctx.
type Client struct {
	base       string
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger logs every call at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver reports call latency and outcome.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New builds a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:       strings.TrimRight(baseURL, "/") + resourcePath,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resource URL every request is built from.
func (c *Client) BaseURL() string { return c.base }

// ListAll returns every employee in server order. A non-2xx answer is an
// *HTTPError carrying the status and body; only transport failures are a
// *NetworkError, so callers can tell a failing server from an unreachable one.
func (c *Client) ListAll(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	if err := c.do(ctx, "list", http.MethodGet, "", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// GetByID fetches one employee. Every non-2xx answer is a *NotFoundError.
func (c *Client) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	var out models.Employee
	if err := c.do(ctx, "get", http.MethodGet, "/"+url.PathEscape(id), nil, &out); err != nil {
		if isHTTPError(err) {
			return nil, &NotFoundError{ID: id, Err: err}
		}
		return nil, err
	}
	return &out, nil
}

// Create posts a draft and returns the stored employee with its new ID.
func (c *Client) Create(ctx context.Context, draft models.EmployeeDraft) (*models.Employee, error) {
	var out models.Employee
	if err := c.do(ctx, "create", http.MethodPost, "", draft, &out); err != nil {
		if isHTTPError(err) {
			return nil, &ValidationError{Err: err}
		}
		return nil, err
	}
	return &out, nil
}

// Update replaces the editable fields of employee id.
func (c *Client) Update(ctx context.Context, id string, draft models.EmployeeDraft) (*models.Employee, error) {
	var out models.Employee
	if err := c.do(ctx, "update", http.MethodPut, "/"+url.PathEscape(id), draft, &out); err != nil {
		switch StatusCode(err) {
		case 0:
			return nil, err
		case http.StatusNotFound:
			return nil, &NotFoundError{ID: id, Err: err}
		default:
			return nil, &ValidationError{Err: err}
		}
	}
	return &out, nil
}

// Delete removes employee id. Every non-2xx answer is a *NotFoundError.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, "delete", http.MethodDelete, "/"+url.PathEscape(id), nil, nil); err != nil {
		if isHTTPError(err) {
			return &NotFoundError{ID: id, Err: err}
		}
		return err
	}
	return nil
}

// SearchByKeyword returns employees whose name or email contains text. A blank
// text issues no request and yields nil.
func (c *Client) SearchByKeyword(ctx context.Context, text string) ([]models.Employee, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	var out []models.Employee
	if err := c.do(ctx, "search", http.MethodGet, "/search?keyword="+url.QueryEscape(text), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// ListByDepartment returns employees of department name. A blank name issues
// no request and yields nil.
func (c *Client) ListByDepartment(ctx context.Context, name string) ([]models.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var out []models.Employee
	if err := c.do(ctx, "department", http.MethodGet, "/department/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) (err error) {
	target := c.base + path
	start := time.Now()
	status := 0
	defer func() {
		elapsed := time.Since(start)
		if c.observer != nil {
			c.observer.ObserveAPICall(op, err, elapsed)
		}
		c.logger.Debug("employee api call",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
	}()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("marshal %s body: %w", op, mErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: raw}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func isHTTPError(err error) bool { return StatusCode(err) != 0 }

func nonNil(list []models.Employee) []models.Employee {
	if list == nil {
		return []models.Employee{}
	}
	return list
}
