package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the HTTP implementation of Provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	federated  *FederatedFlow
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithFederatedFlow installs the OAuth flow used by FederatedSignIn.
func WithFederatedFlow(f *FederatedFlow) ClientOption {
	return func(c *Client) { c.federated = f }
}

// NewClient creates a new identity provider client.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentialRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SignUp creates a new email-password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Identity, *Credentials, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/accounts", "", credentialRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, nil, err
	}
	id, creds := resp.split()
	return id, creds, nil
}

// SignIn authenticates an existing email-password account.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, *Credentials, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/sessions", "", credentialRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, nil, err
	}
	id, creds := resp.split()
	return id, creds, nil
}

// FederatedSignIn runs the authorization-code flow for the named provider and
// exchanges the resulting code for provider credentials.
func (c *Client) FederatedSignIn(ctx context.Context, provider string) (*Identity, *Credentials, error) {
	if c.federated == nil {
		return nil, nil, ErrUnknownProvider
	}

	code, redirectURI, err := c.federated.Authorize(ctx, provider)
	if err != nil {
		return nil, nil, err
	}

	body := map[string]string{
		"provider":    provider,
		"code":        code,
		"redirectUri": redirectURI,
	}
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/federated", "", body, &resp); err != nil {
		return nil, nil, err
	}
	id, creds := resp.split()
	return id, creds, nil
}

// SignOut revokes the refresh token server-side.
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return c.do(ctx, http.MethodPost, "/v1/sessions/revoke", "", body, nil)
}

// Refresh exchanges a refresh token for fresh credentials.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/token", "", body, &resp); err != nil {
		return nil, err
	}
	_, creds := resp.split()
	return creds, nil
}

// Lookup resolves an access token back to its Identity.
func (c *Client) Lookup(ctx context.Context, accessToken string) (*Identity, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/me", accessToken, nil, &resp); err != nil {
		return nil, err
	}
	id, _ := resp.split()
	return id, nil
}

// UpdateProfile changes display name and/or photo URL on the account.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*Identity, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPatch, "/v1/accounts/me", accessToken, update, &resp); err != nil {
		return nil, err
	}
	id, _ := resp.split()
	return id, nil
}

// do executes one provider API call and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return mapProviderError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding provider response: %w", err)
	}
	return nil
}

// mapProviderError translates provider error bodies into package sentinels.
func mapProviderError(resp *http.Response) error {
	var pe providerError
	_ = json.NewDecoder(resp.Body).Decode(&pe)

	switch pe.Code {
	case "INVALID_CREDENTIAL", "INVALID_PASSWORD", "USER_NOT_FOUND":
		return ErrInvalidCredential
	case "EMAIL_IN_USE":
		return ErrEmailInUse
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusBadRequest:
		if pe.Message != "" {
			return fmt.Errorf("identity provider rejected request: %s", pe.Message)
		}
		return ErrInvalidCredential
	}

	return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, pe.Message)
}

// split separates a session response into its identity and credential halves.
func (r *sessionResponse) split() (*Identity, *Credentials) {
	id := &Identity{
		UID:         r.UID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
	}
	creds := &Credentials{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
	if r.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	} else if exp, ok := tokenExpiry(r.AccessToken); ok {
		creds.ExpiresAt = exp
	}
	return id, creds
}
