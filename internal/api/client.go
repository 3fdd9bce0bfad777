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
	"time"

	"github.com/google/uuid"

	"github.com/forumx/forumx/internal/session"
)

// ErrSessionExpired is returned when a 401 could not be recovered by a token
// refresh. The session has been force signed out; the user must log in again.
var ErrSessionExpired = errors.New("session expired, please sign in again")

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// TokenSource supplies bearer tokens for outbound requests. Satisfied by
// *session.Store.
type TokenSource interface {
	Authenticated() bool
	Token(ctx context.Context, force bool) (string, error)
	ForceSignOut()
}

// Client sends JSON requests to the backend. When an identity is present every
// request carries a freshly obtained bearer token; without one the request is
// sent unauthenticated. A 401 on an authenticated request triggers exactly one
// forced token refresh and one retry before the session is force signed out.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a backend API client.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE request, optionally with a JSON body.
func (c *Client) Delete(ctx context.Context, path string, body any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, body, nil)
}

// Do executes one backend request. The body is buffered up front so the
// request can be replayed on the single refresh-and-retry pass.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	requestID := uuid.New().String()

	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, query, payload, token, requestID)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		drain(resp)

		// One forced refresh, one retry. Never more.
		fresh, refreshErr := c.tokens.Token(ctx, true)
		if refreshErr != nil {
			c.tokens.ForceSignOut()
			return ErrSessionExpired
		}

		resp, err = c.send(ctx, method, path, query, payload, fresh, requestID)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			c.tokens.ForceSignOut()
			return ErrSessionExpired
		}
	}

	return decode(resp, out)
}

// currentToken returns the bearer token for the current identity, or "" when
// the request should go out unauthenticated.
func (c *Client) currentToken(ctx context.Context) (string, error) {
	if !c.tokens.Authenticated() {
		return "", nil
	}
	token, err := c.tokens.Token(ctx, false)
	if err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			return "", nil
		}
		return "", fmt.Errorf("obtaining token: %w", err)
	}
	return token, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token, requestID string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}

// decode consumes the response body, mapping non-2xx statuses to *APIError.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			if envelope.Error != nil {
				apiErr.Code = envelope.Error.Code
				apiErr.Message = envelope.Error.Message
			} else {
				apiErr.Message = envelope.Message
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
