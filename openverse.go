package placephotos

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultOpenverseBaseURL is the Openverse image search endpoint.
const DefaultOpenverseBaseURL = "https://api.openverse.engineering/v1/images/"

// OpenverseProvider searches the Openverse license-tagged media index. It is
// the second-priority provider: broader coverage than Commons, but titles are
// noisier, so it only runs when Commons yields nothing.
type OpenverseProvider struct {
	BaseURL     string       // default: DefaultOpenverseBaseURL
	HTTPClient  *http.Client // default: http.DefaultClient
	UserAgent   string
	PageSize    int    // default 20
	LicenseType string // default "all"; "commercial" is the stricter option
}

func (p *OpenverseProvider) Name() string { return SourceOpenverse }

type openverseResponse struct {
	Results []struct {
		URL       string `json:"url"`
		Thumbnail string `json:"thumbnail"`
		Title     string `json:"title"`
		Creator   string `json:"creator"`
		License   string `json:"license"`
		Source    string `json:"source"`
	} `json:"results"`
}

func (p *OpenverseProvider) Search(ctx context.Context, query string) ([]RawCandidate, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultOpenverseBaseURL
	}
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	licenseType := p.LicenseType
	if licenseType == "" {
		licenseType = "all"
	}

	params := url.Values{
		"q":            {query},
		"page_size":    {strconv.Itoa(pageSize)},
		"license_type": {licenseType},
	}

	var decoded openverseResponse
	if err := fetchJSON(ctx, client, base+"?"+params.Encode(), p.UserAgent, &decoded); err != nil {
		return nil, err
	}

	var out []RawCandidate
	for _, r := range decoded.Results {
		imgURL := r.URL
		if imgURL == "" {
			imgURL = r.Thumbnail
		}
		if imgURL == "" {
			continue
		}
		label := "Openverse"
		if r.Source != "" {
			label += " | " + r.Source
		}
		out = append(out, RawCandidate{
			URL:     imgURL,
			Title:   r.Title,
			Creator: r.Creator,
			License: r.License,
			Label:   label,
			Source:  SourceOpenverse,
		})
	}
	return out, nil
}
