package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"talkback/internal/domain"
)

const defaultEndpoint = "http://127.0.0.1:8001/transcribe"

// Config controls the transcription HTTP client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client posts a finished recording to the speech-to-text endpoint as a
// multipart form upload. There is no internal retry; the caller owns any
// retry policy.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Transcribe uploads the audio buffer and returns the transcript text.
// The backend reports the transcript under either "text" or
// "transcription"; both are accepted.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", &domain.TranscriptionError{Detail: "empty recording buffer"}
	}

	body, contentType, err := buildUpload(audio)
	if err != nil {
		return "", &domain.TranscriptionError{Detail: "failed to encode upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return "", &domain.TranscriptionError{Detail: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.TranscriptionError{Detail: "request failed", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &domain.TranscriptionError{Detail: "failed to read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.TranscriptionError{
			Detail: fmt.Sprintf("endpoint returned HTTP %d: %s", resp.StatusCode, trimmedBody(payload)),
		}
	}

	var parsed struct {
		Text          string `json:"text"`
		Transcription string `json:"transcription"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &domain.TranscriptionError{Detail: "malformed response payload", Err: err}
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		text = strings.TrimSpace(parsed.Transcription)
	}
	if text == "" {
		return "", &domain.TranscriptionError{Detail: "response contained no transcript"}
	}
	return text, nil
}

func buildUpload(audio []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", "recording.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := fileWriter.Write(audio); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

func trimmedBody(payload []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(payload))
	if len(text) > limit {
		return text[:limit]
	}
	return text
}
