// Package backend is the low-level REST client for the career-coaching
// API. The session, favorites, jobs and chat packages build their
// operations on top of it; nothing here interprets domain semantics beyond
// the backend's `{"detail": ...}` error envelope.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/AntonAveryan/careermate/internal/errors"
)

// DefaultBaseURL matches the backend's development default.
const DefaultBaseURL = "http://localhost:8000"

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the backend, carrying the verbatim
// detail message when the body had one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Client issues HTTP requests against a single backend base URL. All
// requests carry a UUID X-Request-ID and, when a bearer token is supplied,
// an Authorization header.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the given base URL, falling back to
// DefaultBaseURL when empty.
func New(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON performs a GET and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path, bearer string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrap(err, "[GetJSON] build request")
	}
	return c.do(req, bearer, "", out)
}

// PostJSON sends payload as a JSON body and decodes a 2xx response into
// out. Both payload and out may be nil.
func (c *Client) PostJSON(ctx context.Context, path, bearer string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "[PostJSON] marshal payload")
		}
		body = bytes.NewReader(blob)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "[PostJSON] build request")
	}
	return c.do(req, bearer, "application/json", out)
}

// PostForm sends application/x-www-form-urlencoded data. The backend's
// token endpoint is form-encoded, not JSON.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "[PostForm] build request")
	}
	return c.do(req, "", "application/x-www-form-urlencoded", out)
}

// PostFile uploads a single file as multipart form data under the given
// field name.
func (c *Client) PostFile(ctx context.Context, path, bearer, field, filePath string, out any) error {
	f, err := os.Open(filePath)
	if err != nil {
		return errors.Wrap(err, "[PostFile] open file")
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filepath.Base(filePath))
	if err != nil {
		return errors.Wrap(err, "[PostFile] create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return errors.Wrap(err, "[PostFile] read file")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "[PostFile] finalize form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(err, "[PostFile] build request")
	}
	return c.do(req, bearer, writer.FormDataContentType(), out)
}

// Delete issues a DELETE and returns the HTTP status code. Interpreting
// the status is left to the caller: the favorites collection treats 404
// the same as 204, so a non-2xx here is not automatically an error.
func (c *Client) Delete(ctx context.Context, path, bearer string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return 0, errors.Wrap(err, "[Delete] build request")
	}
	c.decorate(req, bearer, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "DELETE %s: %v", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) decorate(req *http.Request, bearer, contentType string) {
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func (c *Client) do(req *http.Request, bearer, contentType string, out any) error {
	c.decorate(req, bearer, contentType)
	c.logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "%s %s: read body: %v", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Detail: decodeDetail(body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrapf(apperrors.ErrRemoteUnavailable, "%s %s: decode response: %v", req.Method, req.URL.Path, err)
	}
	return nil
}

// decodeDetail pulls the "detail" field out of an error body, falling back
// to the raw body text.
func decodeDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(body))
}
