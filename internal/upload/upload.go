package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no upload target is configured.
var ErrNotConfigured = errors.New("image upload target not configured")

// Client uploads images to the configured hosting service and returns the
// hosted URL, which is then written to the user record by the caller.
type Client struct {
	uploadURL  string
	preset     string
	httpClient *http.Client
}

// NewClient creates an upload client.
func NewClient(uploadURL, preset string, timeout time.Duration) *Client {
	return &Client{
		uploadURL: uploadURL,
		preset:    preset,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UploadImage sends one image file and returns its hosted secure URL.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	if c.uploadURL == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := writer.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("creating upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("creating upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("upload service returned status %d", resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}
	return result.SecureURL, nil
}
