package placephotos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// downloadTimeout bounds a single binary download attempt.
const downloadTimeout = 40 * time.Second

// rateLimitBackoff is the escalating wait schedule for HTTP 429 responses.
// Attempts past the schedule reuse the last value.
var rateLimitBackoff = []time.Duration{2 * time.Second, 6 * time.Second, 12 * time.Second}

// HTTPStatusError reports a non-200 response. The retry layer inspects it to
// distinguish rate limiting from other failures.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// Download fetches the raw bytes and content type of a URL. The stealth
// client, when configured, is tried first; any failure there falls back to the
// plain client.
func (cfg *Config) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	cfg.defaults()

	if cfg.StealthClient != nil {
		if data, ct, err := fetchBytes(ctx, cfg.StealthClient, rawURL, cfg.UserAgent); err == nil {
			return data, ct, nil
		}
	}
	return fetchBytes(ctx, cfg.HTTPClient, rawURL, cfg.UserAgent)
}

func fetchBytes(ctx context.Context, client *http.Client, rawURL, userAgent string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &HTTPStatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, ct, nil
}

// DownloadWithRetry is Download plus the politeness policy for public
// services: 429 responses wait out the escalating backoff schedule, transport
// errors wait a short linear backoff, any other HTTP error fails immediately.
// On exhaustion the final error is returned; this is the only boundary where
// raw transport errors surface to the caller.
func (cfg *Config) DownloadWithRetry(ctx context.Context, rawURL string) ([]byte, string, error) {
	cfg.defaults()
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		data, ct, err := cfg.Download(ctx, rawURL)
		if err == nil {
			return data, ct, nil
		}
		lastErr = err

		var statusErr *HTTPStatusError
		isStatus := errors.As(err, &statusErr)
		if isStatus && statusErr.StatusCode != http.StatusTooManyRequests {
			break
		}
		if attempt == retries {
			break
		}

		var wait time.Duration
		if isStatus {
			i := attempt
			if i > len(rateLimitBackoff)-1 {
				i = len(rateLimitBackoff) - 1
			}
			wait = rateLimitBackoff[i]
		} else {
			wait = time.Second + time.Duration(attempt)*time.Second
		}
		if err := cfg.pause(ctx, wait); err != nil {
			return nil, "", err
		}
	}
	return nil, "", lastErr
}

// pause waits for d, honoring cancellation. A test-injected Sleep replaces the
// real wait.
func (cfg *Config) pause(ctx context.Context, d time.Duration) error {
	if cfg.Sleep != nil {
		cfg.Sleep(d)
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// extByMIME is the trusted content-type → extension table.
var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var urlExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif)(?:\?|$)`)

// GuessExtension selects a file extension from the response content type,
// falling back to the URL path suffix, defaulting to ".jpg". ".jpeg" always
// normalizes to ".jpg" so a key maps to one filename.
func GuessExtension(contentType, rawURL string) string {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ext, ok := extByMIME[ct]; ok {
		return ext
	}

	if m := urlExtRe.FindStringSubmatch(rawURL); m != nil {
		ext := strings.ToLower(m[1])
		if ext == "jpeg" {
			ext = "jpg"
		}
		return "." + ext
	}
	return ".jpg"
}
