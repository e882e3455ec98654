package placephotos

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDownloadSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("FAKEJPEGDATA"))
	}))
	defer srv.Close()

	cfg := &Config{HTTPClient: srv.Client()}
	data, ct, err := cfg.Download(context.Background(), srv.URL+"/image.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", ct)
	}
	if string(data) != "FAKEJPEGDATA" {
		t.Errorf("data = %q", data)
	}
}

func TestDownloadMissingContentTypeDefaults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil // suppress auto-detection
		_, _ = w.Write([]byte{0x00, 0x01})
	}))
	defer srv.Close()

	cfg := &Config{HTTPClient: srv.Client()}
	_, ct, err := cfg.Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct != "application/octet-stream" {
		t.Errorf("content type = %q, want application/octet-stream", ct)
	}
}

func TestDownloadWithRetryRecoversFrom429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	var waits []time.Duration
	cfg := &Config{
		HTTPClient: srv.Client(),
		MaxRetries: 3,
		Sleep:      func(d time.Duration) { waits = append(waits, d) },
	}

	data, ct, err := cfg.DownloadWithRetry(context.Background(), srv.URL+"/img.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "PNGDATA" || ct != "image/png" {
		t.Errorf("got (%q, %q)", data, ct)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	want := []time.Duration{2 * time.Second, 6 * time.Second}
	if len(waits) != len(want) || waits[0] != want[0] || waits[1] != want[1] {
		t.Errorf("backoff waits = %v, want %v", waits, want)
	}
}

func TestDownloadWithRetryExhaustion(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var waits []time.Duration
	cfg := &Config{
		HTTPClient: srv.Client(),
		MaxRetries: 3,
		Sleep:      func(d time.Duration) { waits = append(waits, d) },
	}

	_, _, err := cfg.DownloadWithRetry(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("error = %v, want a 429 HTTPStatusError", err)
	}
	if got := calls.Load(); got != 4 { // first attempt + 3 retries
		t.Errorf("attempts = %d, want 4", got)
	}
	// Schedule escalates then reuses its last value.
	want := []time.Duration{2 * time.Second, 6 * time.Second, 12 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestDownloadWithRetryOtherStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	cfg := &Config{
		HTTPClient: srv.Client(),
		MaxRetries: 3,
		Sleep:      func(time.Duration) { t.Error("no wait expected for 404") },
	}

	_, _, err := cfg.DownloadWithRetry(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (404 is not retried)", got)
	}
}

func TestDownloadWithRetryTransportErrorLinearBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	var waits []time.Duration
	cfg := &Config{
		HTTPClient: http.DefaultClient,
		MaxRetries: 2,
		Sleep:      func(d time.Duration) { waits = append(waits, d) },
	}

	_, _, err := cfg.DownloadWithRetry(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected transport error")
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(waits) != len(want) || waits[0] != want[0] || waits[1] != want[1] {
		t.Errorf("waits = %v, want %v", waits, want)
	}
}

func TestGuessExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		url         string
		want        string
	}{
		{"jpeg content type", "image/jpeg", "https://example/x", ".jpg"},
		{"png content type", "image/png", "https://example/x", ".png"},
		{"webp content type", "image/webp", "https://example/x", ".webp"},
		{"gif content type", "image/gif", "https://example/x", ".gif"},
		{"content type with params", "image/jpeg; charset=utf-8", "https://example/x", ".jpg"},
		{"url suffix fallback", "application/octet-stream", "https://example/photo.PNG", ".png"},
		{"jpeg suffix normalized", "", "https://example/photo.jpeg", ".jpg"},
		{"suffix before query string", "", "https://example/photo.webp?width=800", ".webp"},
		{"no signal defaults to jpg", "text/plain", "https://example/photo", ".jpg"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := GuessExtension(tc.contentType, tc.url); got != tc.want {
				t.Errorf("GuessExtension(%q, %q) = %q, want %q", tc.contentType, tc.url, got, tc.want)
			}
		})
	}
}
