package placephotos

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Manifest source tags. The website reads these verbatim.
const (
	SourceLocal     = "local"
	SourceOverride  = "override"
	SourceCommons   = "commons"
	SourceOpenverse = "openverse"
)

// searchTimeout bounds a single metadata search call.
const searchTimeout = 25 * time.Second

// RawCandidate is one provider search hit, decoded from the provider's
// response shape at the adapter boundary. Scoring and selection never see
// provider-specific fields.
type RawCandidate struct {
	URL     string // direct image URL
	Title   string // provider title, scored against the entity name
	Creator string // artist/creator, may contain HTML markup
	License string // license identifier, e.g. "CC BY-SA 4.0"
	Label   string // provenance label leading the attribution string
	Source  string // manifest source tag (SourceCommons, SourceOpenverse)
}

// SearchProvider is a metadata search backend. One Search call issues exactly
// one network request. Zero results is not an error; adapters never retry
// internally, a failed search simply causes the next query to be tried.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string) ([]RawCandidate, error)
}

// fetchJSON issues a GET and decodes the JSON response into dest.
func fetchJSON(ctx context.Context, client *http.Client, rawURL, userAgent string, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
