package placephotos

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
)

// DefaultCommonsBaseURL is the Wikimedia Commons MediaWiki API endpoint.
const DefaultCommonsBaseURL = "https://commons.wikimedia.org/w/api.php"

// CommonsProvider searches Wikimedia Commons. It is the first-priority
// provider: file titles and extended metadata (artist, license) are precise,
// which makes both scoring and attribution reliable.
//
// A single combined call is issued per query: generator=search over the File
// namespace with prop=imageinfo, so search hits arrive with their image URL
// and metadata already attached.
type CommonsProvider struct {
	BaseURL    string       // default: DefaultCommonsBaseURL
	HTTPClient *http.Client // default: http.DefaultClient
	UserAgent  string
	Limit      int // gsrlimit, default 10
}

func (p *CommonsProvider) Name() string { return SourceCommons }

type commonsResponse struct {
	Query struct {
		Pages map[string]commonsPage `json:"pages"`
	} `json:"query"`
}

type commonsPage struct {
	Index     int    `json:"index"` // search rank within the generator result
	Title     string `json:"title"`
	ImageInfo []struct {
		URL         string `json:"url"`
		MIME        string `json:"mime"`
		ExtMetadata map[string]struct {
			Value string `json:"value"`
		} `json:"extmetadata"`
	} `json:"imageinfo"`
}

// Search returns the query's ranked candidates. Pages arrive as an unordered
// map keyed by page id; the generator's index field restores search rank so
// that first-seen tie-breaking downstream matches the provider's own order.
func (p *CommonsProvider) Search(ctx context.Context, query string) ([]RawCandidate, error) {
	base := p.BaseURL
	if base == "" {
		base = DefaultCommonsBaseURL
	}
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"action":       {"query"},
		"format":       {"json"},
		"generator":    {"search"},
		"gsrnamespace": {"6"},
		"gsrlimit":     {strconv.Itoa(limit)},
		"gsrsearch":    {query},
		"prop":         {"imageinfo"},
		"iiprop":       {"url|mime|extmetadata"},
	}

	var decoded commonsResponse
	if err := fetchJSON(ctx, client, base+"?"+params.Encode(), p.UserAgent, &decoded); err != nil {
		return nil, err
	}

	pages := make([]commonsPage, 0, len(decoded.Query.Pages))
	for _, page := range decoded.Query.Pages {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var out []RawCandidate
	for _, page := range pages {
		if page.Title == "" || len(page.ImageInfo) == 0 {
			continue
		}
		ii := page.ImageInfo[0]
		if ii.URL == "" {
			continue
		}
		out = append(out, RawCandidate{
			URL:     ii.URL,
			Title:   page.Title,
			Creator: ii.ExtMetadata["Artist"].Value,
			License: ii.ExtMetadata["LicenseShortName"].Value,
			Label:   "Wikimedia Commons",
			Source:  SourceCommons,
		})
	}
	return out, nil
}
