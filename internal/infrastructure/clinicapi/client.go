package clinicapi

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

	"clinic-calendar/config"

	"github.com/sirupsen/logrus"
)

var ErrTokenRefresh = errors.New("clinic api token refresh failed")

// TokenSource supplies the bearer token for the session found in ctx.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// Refresh exchanges the session's refresh token for a new access token.
	Refresh(ctx context.Context) (string, error)
}

// APIError is a non-2xx answer from the clinic backend. Message is the backend's own text.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clinic api: status %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the backend status behind err, or 0 when err is not an *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *logrus.Logger
}

// NewClient builds an unauthenticated client. Use WithTokenSource for session calls.
func NewClient(cfg config.ClinicAPIConfig, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// WithTokenSource returns a copy of c that authenticates every request.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	clone := *c
	clone.tokens = ts
	return &clone
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one JSON request. A 401 triggers a single token refresh and a single retry.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
	}

	token := ""
	if c.tokens != nil {
		var err error
		token, err = c.tokens.Token(ctx)
		if err != nil {
			return err
		}
	}

	status, respBody, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.tokens != nil {
		c.log.Debugf("clinic api %s %s returned 401, refreshing token", method, path)
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			c.log.Warnf("Failed to refresh clinic api token: %+v", err)
			return fmt.Errorf("%w: %v", ErrTokenRefresh, err)
		}
		status, respBody, err = c.send(ctx, method, path, query, payload, token)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		apiErr := decodeAPIError(status, respBody)
		c.log.Warnf("clinic api %s %s failed: %d %s", method, path, status, apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(respBody), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return resp.StatusCode, respBody, nil
}

// unwrapData accepts both bare bodies and {"data": ...} envelopes.
func unwrapData(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	if data, ok := envelope["data"]; ok && len(data) > 0 && string(data) != "null" {
		return data
	}
	return trimmed
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed struct {
		Message string         `json:"message"`
		Error   any            `json:"error"`
		Errors  map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			if s, ok := parsed.Error.(string); ok {
				apiErr.Message = s
			}
		}
		apiErr.Fields = parsed.Errors
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
		apiErr.Message = text
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
