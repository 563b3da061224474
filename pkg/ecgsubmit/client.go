package ecgsubmit

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"

	"cardionote-be/internal/apperror"
	"cardionote-be/internal/pkg/logger"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// MinWidth and MinHeight are the inclusive resolution floor; anything
	// smaller carries too little signal for the analysis webhook.
	MinWidth  = 700
	MinHeight = 400

	// The webhook documents no idempotency guarantee, so retries use a
	// fixed delay rather than backoff; request volume is low enough that
	// this tradeoff keeps the failure handling simple.
	DefaultRetryDelay = 2000 * time.Millisecond
	DefaultMaxRetries = 3
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload is one user-selected ECG image with its declared metadata.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	CapturedAt  time.Time
}

// Client submits ECG images to the external analysis webhook with
// bounded retry. Validation failures are deterministic and never retried;
// transport failures and non-2xx responses are retried up to the budget.
type Client struct {
	webhookURL string
	httpClient *http.Client
	retryDelay time.Duration
	maxRetries int
	logger     logger.ILogger
}

func NewClient(webhookURL string, log logger.ILogger) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{},
		retryDelay: DefaultRetryDelay,
		maxRetries: DefaultMaxRetries,
		logger:     log,
	}
}

// WithRetryPolicy overrides the retry budget and delay. Used by tests;
// production wiring keeps the defaults.
func (c *Client) WithRetryPolicy(maxRetries int, delay time.Duration) *Client {
	c.maxRetries = maxRetries
	c.retryDelay = delay
	return c
}

// Submit validates the upload, packages it, and posts it to the webhook.
// On success it returns the raw response body verbatim; the caller
// interprets it as the pipeline's raw analysis text.
func (c *Client) Submit(ctx context.Context, up Upload) (string, error) {
	width, height, err := c.validate(up)
	if err != nil {
		return "", err
	}

	// Scoped object reference for the upload bytes; released on every
	// return path, success or failure.
	tmp, err := os.CreateTemp("", "ecg-upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(up.Data); err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	objectURI := "file://" + tmp.Name()

	payload, contentType, err := c.buildPayload(up, objectURI, width, height)
	if err != nil {
		return "", err
	}

	return c.send(ctx, payload, contentType)
}

// validate runs the deterministic client-side checks and returns the
// decoded pixel dimensions.
func (c *Client) validate(up Upload) (int, int, error) {
	if !allowedTypes[up.ContentType] {
		return 0, 0, apperror.NewValidationError("unsupported image type %q", up.ContentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return 0, 0, apperror.NewValidationError("image could not be decoded: %v", err)
	}

	if up.ContentType == "image/gif" {
		g, err := gif.DecodeAll(bytes.NewReader(up.Data))
		if err != nil {
			return 0, 0, apperror.NewValidationError("gif could not be decoded: %v", err)
		}
		if len(g.Image) > 1 {
			return 0, 0, apperror.NewValidationError("animated gif is not supported")
		}
	}

	if cfg.Width < MinWidth || cfg.Height < MinHeight {
		return 0, 0, apperror.NewValidationError(
			"image resolution %dx%d is below the %dx%d minimum",
			cfg.Width, cfg.Height, MinWidth, MinHeight,
		)
	}

	return cfg.Width, cfg.Height, nil
}

func (c *Client) buildPayload(up Upload, objectURI string, width, height int) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", up.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"file_base64":  base64.StdEncoding.EncodeToString(up.Data),
		"object_uri":   objectURI,
		"captured_at":  up.CapturedAt.Format(time.RFC3339),
		"filename":     up.Filename,
		"content_type": up.ContentType,
		"size":         strconv.Itoa(len(up.Data)),
		"dimensions":   fmt.Sprintf("%dx%d", width, height),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// send posts the payload with a bounded retry loop: 1 initial attempt
// plus maxRetries, fixed delay in between. Any non-2xx response counts
// the same as a transport error.
func (c *Client) send(ctx context.Context, payload []byte, contentType string) (string, error) {
	attempts := c.maxRetries + 1
	var lastStatus int
	var lastMessage string

	for attempt := 1; attempt <= attempts; attempt++ {
		body, status, err := c.post(ctx, payload, contentType)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}

		if err != nil {
			lastStatus = 0
			lastMessage = err.Error()
		} else {
			lastStatus = status
			lastMessage = body
		}

		if c.logger != nil {
			c.logger.Warn("ECGSubmit", "Webhook attempt failed", map[string]interface{}{
				"attempt": attempt,
				"status":  lastStatus,
				"error":   lastMessage,
			})
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return "", &apperror.SubmissionError{
					Attempts: attempt,
					Message:  ctx.Err().Error(),
				}
			case <-time.After(c.retryDelay):
			}
		}
	}

	return "", &apperror.SubmissionError{
		Attempts:   attempts,
		LastStatus: lastStatus,
		Message:    lastMessage,
	}
}

func (c *Client) post(ctx context.Context, payload []byte, contentType string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}

	return string(bodyBytes), resp.StatusCode, nil
}
