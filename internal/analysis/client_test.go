package analysis

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAnalyze_UploadsMultipartAndDecodesSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, errParse := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if errParse != nil || mediaType != "multipart/form-data" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		reader, errReader := r.MultipartReader()
		if errReader != nil {
			t.Errorf("multipart reader: %v", errReader)
			return
		}
		part, errPart := reader.NextPart()
		if errPart != nil {
			t.Errorf("next part: %v", errPart)
			return
		}
		if part.FormName() != "file" || part.FileName() != "report.pdf" {
			t.Errorf("unexpected part %q/%q", part.FormName(), part.FileName())
		}
		payload, _ := io.ReadAll(part)
		if string(payload) != "quarterly numbers" {
			t.Errorf("unexpected payload %q", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"summary": "revenue up 12%"}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	result, err := client.Analyze(context.Background(), "report.pdf", strings.NewReader("quarterly numbers"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Summary != "revenue up 12%" {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
}

func TestAnalyze_BackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Analyze(context.Background(), "report.pdf", strings.NewReader("x")); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestAnalyze_NilClient(t *testing.T) {
	var client *Client
	if _, err := client.Analyze(context.Background(), "report.pdf", strings.NewReader("x")); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
