package placephotos

import (
	"reflect"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"turkish letters folded", "Gölbaşı Düğün Salonu", "golbasi-dugun-salonu"},
		{"already ascii", "golbasi dugun salonu", "golbasi-dugun-salonu"},
		{"dotted capital I", "İnci Pastanesi", "inci-pastanesi"},
		{"punctuation collapsed", "Lale  -  Pastanesi!", "lale-pastanesi"},
		{"leading and trailing separators trimmed", "  --Orkide-- ", "orkide"},
		{"digits kept", "Salon 2000", "salon-2000"},
		{"empty", "", ""},
		{"only punctuation", "?!.", ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeKey(tc.in); got != tc.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeKeyStability(t *testing.T) {
	t.Parallel()

	// The fetcher and the manual uploader must derive the same identity.
	a := NormalizeKey("Gölbaşı Düğün Salonu")
	b := NormalizeKey("golbasi dugun salonu")
	if a != b {
		t.Errorf("key mismatch: %q vs %q", a, b)
	}
}

func TestNormalizeForMatch(t *testing.T) {
	t.Parallel()

	if got, want := NormalizeForMatch("Gölbaşı, Düğün & Salonu"), "golbasi dugun salonu"; got != want {
		t.Errorf("NormalizeForMatch = %q, want %q", got, want)
	}
}

func TestTokenizeForMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"stop words removed", "Lale Pastanesi Ankara", []string{"lale"}},
		{"short tokens removed", "A B Fotoğrafçılık Mehmet", []string{"mehmet"}},
		{"generic venue words removed", "Mavi Kelebek Kır Bahçesi", []string{"mavi", "kelebek"}},
		{"all stop words yields nil", "Düğün Salonu Gölbaşı", nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := TokenizeForMatch(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("TokenizeForMatch(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	if got, want := StripHTML(`<a href="https://example.org">Jane Doe</a>`), "Jane Doe"; got != want {
		t.Errorf("StripHTML = %q, want %q", got, want)
	}
	if got := StripHTML(""); got != "" {
		t.Errorf("StripHTML(empty) = %q", got)
	}
}
