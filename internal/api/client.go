// Package api is the client for the notes-portal backend REST contract. It
// attaches the bearer token from the session store to every request,
// translates failures into *APIError, and handles authorization failures
// globally: any 401 clears the session and fires the onUnauthorized callback
// wired in by the composition root.
package api

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

	"github.com/google/uuid"

	"notesportal/internal/session"
)

type Client struct {
	base           string
	http           *http.Client
	sessions       *session.Store
	onUnauthorized func()
}

func New(baseURL string, timeout time.Duration, sessions *session.Store, onUnauthorized func()) *Client {
	return &Client{
		base:           strings.TrimRight(baseURL, "/"),
		http:           &http.Client{Timeout: timeout},
		sessions:       sessions,
		onUnauthorized: onUnauthorized,
	}
}

// APIError is the structured failure for every non-2xx response and for
// transport failures (Status 0). Message carries the server's message when
// one was provided.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Message returns the server-provided message from err when it is an
// *APIError, and fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.sessions.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs the request and decodes a 2xx body into out. A 401 from any
// endpoint clears the session before the error is returned. The adapter
// never retries.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		code := "network_error"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			code = "timeout"
		}
		return &APIError{Status: 0, Code: code, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.sessions.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return decodeError(resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
