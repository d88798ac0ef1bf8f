package stability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultAPIHost is the public Stability AI API.
	DefaultAPIHost = "https://api.stability.ai"
	// EngineID selects the Stable Image Core model.
	EngineID = "stable-image-core"
	// OutputFormat is the image format requested from the API.
	OutputFormat = "png"
	// MimeType matches OutputFormat.
	MimeType = "image/png"
)

// ImageGenError describes a failed image generation call.
// Parsed is true when the error body was a JSON object; Errors then holds its
// "errors" list. Otherwise Body carries the raw response.
type ImageGenError struct {
	StatusCode int
	Errors     []string
	Body       string
	Parsed     bool
	Err        error // transport failure, StatusCode is 0
}

func (e *ImageGenError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("Stability AI request failed: %v", e.Err)
	case e.Parsed:
		return fmt.Sprintf("Stability AI returned an error: %s", strings.Join(e.Errors, "; "))
	default:
		return fmt.Sprintf("Stability AI returned an error (status %d): %s", e.StatusCode, e.Body)
	}
}

func (e *ImageGenError) Unwrap() error { return e.Err }

// Client calls the Stability AI image generation endpoint
type Client struct {
	httpClient *http.Client
	apiHost    string
}

// NewClient creates a client for apiHost (DefaultAPIHost when empty).
// httpClient may be nil to use http.DefaultClient.
func NewClient(apiHost string, httpClient *http.Client) *Client {
	if apiHost == "" {
		apiHost = DefaultAPIHost
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		apiHost:    strings.TrimSuffix(apiHost, "/"),
	}
}

// Endpoint returns the generation URL for EngineID.
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s/v2beta/stable-image/generate/%s", c.apiHost, EngineID)
}

// GenerateImage posts prompt and returns the raw PNG bytes on HTTP 200.
func (c *Client) GenerateImage(ctx context.Context, prompt, apiKey string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("failed to write prompt: %w", err)
	}
	if err := writer.WriteField("output_format", OutputFormat); err != nil {
		return nil, fmt.Errorf("failed to write output_format: %w", err)
	}
	// The endpoint only parses multipart bodies that contain a file part.
	if _, err := writer.CreateFormFile("none", "none"); err != nil {
		return nil, fmt.Errorf("failed to write placeholder file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "image/*")

	log.Debug().
		Str("engine", EngineID).
		Str("prompt", prompt[:min(50, len(prompt))]+"...").
		Msg("Generating image")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ImageGenError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ImageGenError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		imgErr := parseErrorResponse(resp.StatusCode, data)
		log.Warn().
			Int("status", resp.StatusCode).
			Bool("parsed", imgErr.Parsed).
			Msg("Stability AI returned an error")
		return nil, imgErr
	}

	log.Info().
		Int("image_size_bytes", len(data)).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("Image generated")
	return data, nil
}

// parseErrorResponse decodes {"errors": [...]} bodies; anything that is not a
// JSON object is kept raw.
func parseErrorResponse(status int, body []byte) *ImageGenError {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return &ImageGenError{StatusCode: status, Body: string(body)}
	}

	imgErr := &ImageGenError{StatusCode: status, Body: string(body), Parsed: true}
	raw, ok := payload["errors"]
	if !ok {
		imgErr.Errors = []string{string(body)}
		return imgErr
	}

	var list []interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		// "errors" present but not a list
		imgErr.Errors = []string{string(raw)}
		return imgErr
	}
	for _, item := range list {
		if s, ok := item.(string); ok {
			imgErr.Errors = append(imgErr.Errors, s)
			continue
		}
		imgErr.Errors = append(imgErr.Errors, fmt.Sprint(item))
	}
	if len(imgErr.Errors) == 0 {
		// {"errors":null} or {"errors":[]} carries no detail
		return &ImageGenError{StatusCode: status, Body: string(body)}
	}
	return imgErr
}
