// Package client is the Go SDK for the lost-and-found API. It keeps the
// session in a SessionStore, injects the bearer token, and tears the
// session down when the server answers 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
	// PingTimeout bounds the connectivity check.
	PingTimeout = 5 * time.Second
)

// ErrUnauthorized is matched by errors.Is for any 401 response.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the API.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionStore
	logger  *zap.Logger

	// onUnauthorized runs after a 401. It defaults to clearing the store.
	onUnauthorized func(ctx context.Context)
}

// New builds a client. session may be nil for anonymous use.
func New(cfg Config, session SessionStore) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if session == nil {
		session = NewMemoryStore()
	}

	c := &Client{baseURL: base, http: httpClient, session: session, logger: logger}
	c.onUnauthorized = func(ctx context.Context) {
		if err := c.session.Clear(ctx); err != nil {
			c.logger.Warn("clear session after 401", zap.Error(err))
		}
	}
	return c, nil
}

// Session returns the store backing the client.
func (c *Client) Session() SessionStore {
	return c.session
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	session, err := c.session.Load(ctx)
	if err != nil {
		c.logger.Warn("load session", zap.Error(err))
	} else if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	return req, nil
}

// do sends a JSON request and decodes the "data" member into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Debug("unauthorized response", zap.String("path", req.URL.Path))
			c.onUnauthorized(req.Context())
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var envelope struct {
		Error *struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
		apiErr.Details = envelope.Error.Details
	}
	return apiErr
}

// Ping calls GET /api/test with a 5s timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/api/test", nil, nil, "")
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !body.Success {
		return fmt.Errorf("ping: %s", body.Message)
	}
	return nil
}
