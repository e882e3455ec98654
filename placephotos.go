// Package placephotos resolves best-effort open-licensed photographs for named
// real-world places (venues, photographers, bakeries, florists) and keeps the
// outcome in an incrementally updated manifest that a website can read without
// re-running the resolution.
package placephotos

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"time"
)

// DefaultUserAgent identifies this tool to the open-media providers.
const DefaultUserAgent = "MekanBudurPlaceImageFetcher/1.0 (+github.com/mekanbudur/go-placephotos)"

// DefaultPoliteDelay is the pause after every entity that touched the network.
const DefaultPoliteDelay = 800 * time.Millisecond

// DefaultMaxRetries is the number of download retries after the first attempt.
const DefaultMaxRetries = 3

// ManifestFilename is the manifest document name inside OutDir.
const ManifestFilename = "manifest.json"

// Config holds all dependencies and settings injected by the consumer.
// A single Config is built at process start and passed through the whole
// pipeline; core components never consult ambient state.
type Config struct {
	HTTPClient    *http.Client // default: http.DefaultClient
	StealthClient *http.Client // optional hardened client, tried before HTTPClient for downloads
	UserAgent     string       // default: DefaultUserAgent

	OutDir  string // where images and the manifest are written
	WebRoot string // manifest paths are recorded relative to this root, with a leading slash

	// Providers are the search backends, queried in priority order.
	// Empty means the default pair: Wikimedia Commons, then Openverse.
	Providers []SearchProvider

	Force            bool          // re-download even when a local file exists
	Limit            int           // max entities per run (0 = no limit)
	PoliteDelay      time.Duration // default: DefaultPoliteDelay
	MaxRetries       int           // default: DefaultMaxRetries (negative = no retries)
	RejectDuplicates bool          // reject downloads perceptually identical to an already saved photo

	Logger *slog.Logger // default: slog.Default()

	// Sleep overrides all waiting (retry backoff, politeness delay).
	// Nil means a context-aware time.Sleep. Tests inject a recorder here.
	Sleep func(time.Duration)
}

// defaults fills zero-value fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.PoliteDelay <= 0 {
		cfg.PoliteDelay = DefaultPoliteDelay
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
}

func (cfg *Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// ManifestPath returns the manifest location inside the output directory.
func (cfg *Config) ManifestPath() string {
	return filepath.Join(cfg.OutDir, ManifestFilename)
}

// resolveProviders returns the effective provider list. When Providers is
// empty, the default Commons-then-Openverse pair is built from the Config's
// client and user agent.
func (cfg *Config) resolveProviders() []SearchProvider {
	if len(cfg.Providers) > 0 {
		return cfg.Providers
	}
	return []SearchProvider{
		&CommonsProvider{HTTPClient: cfg.HTTPClient, UserAgent: cfg.UserAgent},
		&OpenverseProvider{HTTPClient: cfg.HTTPClient, UserAgent: cfg.UserAgent},
	}
}
