package placephotos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const openverseFixture = `{
  "result_count": 3,
  "results": [
    {
      "url": "https://img.example/mavi.jpg",
      "title": "Mavi Kelebek",
      "creator": "Jane Doe",
      "license": "CC-BY",
      "source": "flickr"
    },
    {
      "thumbnail": "https://img.example/thumb.jpg",
      "title": "Thumbnail only",
      "creator": "",
      "license": "CC0"
    },
    {
      "title": "No image at all"
    }
  ]
}`

func TestOpenverseSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Mavi Kelebek" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("page_size") != "20" || q.Get("license_type") != "all" {
			t.Errorf("default params wrong: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openverseFixture))
	}))
	defer srv.Close()

	p := &OpenverseProvider{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := p.Search(context.Background(), "Mavi Kelebek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The urlless result is dropped; the thumbnail-only one falls back.
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].URL != "https://img.example/mavi.jpg" || got[0].Label != "Openverse | flickr" {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[0].Creator != "Jane Doe" || got[0].License != "CC-BY" {
		t.Errorf("metadata not mapped: %+v", got[0])
	}
	if got[1].URL != "https://img.example/thumb.jpg" || got[1].Label != "Openverse" {
		t.Errorf("thumbnail fallback = %+v", got[1])
	}
	if got[0].Source != SourceOpenverse {
		t.Errorf("source = %q", got[0].Source)
	}
}

func TestOpenverseSearchCustomLicenseType(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("license_type"); got != "commercial" {
			t.Errorf("license_type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	p := &OpenverseProvider{BaseURL: srv.URL, HTTPClient: srv.Client(), LicenseType: "commercial"}
	got, err := p.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}
}
