// Package transcription uploads audio to an OpenAI-compatible
// speech-to-text endpoint and returns the raw JSON response.
package transcription

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/r2scribe/internal/config"
	"github.com/fmueller/r2scribe/internal/version"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "whisper-1"

	transcriptionsPath = "/audio/transcriptions"
)

// Doer is the HTTP transport used for uploads. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned for any non-2xx response. Body holds the raw
// response for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("transcription API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("transcription API returned status %d: %s", e.StatusCode, body)
}

type Client struct {
	apiKey   string
	endpoint string
	model    string
	http     Doer
}

type Option func(*Client)

// WithHTTPClient replaces the transport. No timeout is applied by default;
// long uploads run until the server answers.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) { c.http = doer }
}

func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = strings.TrimSpace(model)
		}
	}
}

func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.RequireTranscription(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:   cfg.OpenAIAPIKey,
		endpoint: baseURL + transcriptionsPath,
		model:    DefaultModel,
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

// Transcribe streams the file at audioPath as multipart/form-data with the
// fields "model" and "file" and returns the decoded response.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	body, writer := io.Pipe()
	defer body.Close()
	form := multipart.NewWriter(writer)
	go func() {
		writer.CloseWithError(writeForm(form, c.model, filepath.Base(audioPath), f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return ParseResult(raw)
}

func writeForm(form *multipart.Writer, model, fileName string, audio io.Reader) error {
	if err := form.WriteField("model", model); err != nil {
		return err
	}

	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return fmt.Errorf("stream audio: %w", err)
	}

	return form.Close()
}
