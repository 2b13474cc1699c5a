// Package analysis calls the external document-analysis backend that
// turns an uploaded financial document into a summary.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

// ErrBackendUnavailable indicates the analysis backend could not be
// reached or returned a non-success status.
var ErrBackendUnavailable = errors.New("analysis backend unavailable")

// Result is the backend's answer for one document.
type Result struct {
	Summary string `json:"summary"`
}

// Client talks to the analysis backend over HTTP.
type Client struct {
	url    string
	client *http.Client
}

// NewClient constructs an analysis client. An empty url disables the
// feature; Analyze on a nil Client reports the backend as unavailable.
func NewClient(url string, timeout time.Duration) *Client {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
	}
}

// Analyze uploads one document as a multipart form and returns the
// backend's summary.
func (c *Client) Analyze(ctx context.Context, filename string, content io.Reader) (Result, error) {
	if c == nil {
		return Result{}, ErrBackendUnavailable
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, errPart := writer.CreateFormFile("file", filename)
	if errPart != nil {
		return Result{}, fmt.Errorf("analysis: build form: %w", errPart)
	}
	if _, errCopy := io.Copy(part, content); errCopy != nil {
		return Result{}, fmt.Errorf("analysis: read upload: %w", errCopy)
	}
	if errClose := writer.Close(); errClose != nil {
		return Result{}, fmt.Errorf("analysis: finish form: %w", errClose)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if errReq != nil {
		return Result{}, fmt.Errorf("analysis: build request: %w", errReq)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, errDo := c.client.Do(req)
	if errDo != nil {
		log.WithError(errDo).Warn("analysis: backend request failed")
		return Result{}, ErrBackendUnavailable
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("analysis: close response body failed")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warnf("analysis: backend returned status %d", resp.StatusCode)
		return Result{}, ErrBackendUnavailable
	}

	var result Result
	if errDecode := json.NewDecoder(resp.Body).Decode(&result); errDecode != nil {
		return Result{}, fmt.Errorf("analysis: decode response: %w", errDecode)
	}
	return result, nil
}
