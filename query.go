package placephotos

import "strings"

// simplifyPhrases are common business-type and locality phrases removed from
// the normalized name to produce a loosened query variant. Order matters:
// multi-word phrases come before their single-word parts.
var simplifyPhrases = []string{
	"dugun salonu", "balo salonu", "balo salonlari", "kir bahcesi",
	"wedding", "event", "events",
	"pastanesi", "pastane", "firin", "cafe",
	"cicekcilik", "cicekci", "fotograf", "foto",
	"golbasi", "ankara",
}

// BuildQueries produces the ordered search queries for an entity, most
// specific first. Providers run each query in order and stop at the first one
// that yields a usable candidate, so precision comes before recall: the exact
// and quoted forms lead, the simplified (suffix-stripped) forms trail and are
// included only when simplification actually changed the text.
func BuildQueries(name, category string) []string {
	base := strings.TrimSpace(name)
	if base == "" {
		return nil
	}

	baseNorm := NormalizeForMatch(base)
	simplified := baseNorm
	for _, w := range simplifyPhrases {
		simplified = strings.ReplaceAll(simplified, w, " ")
	}
	simplified = strings.Join(strings.Fields(simplified), " ")

	candidates := []string{
		"intitle:" + base,
		`"` + base + `"`,
		base + " Gölbaşı Ankara",
		base + " Golbasi Ankara",
		strings.TrimSpace(base + " " + strings.TrimSpace(category)),
		base + " mekan",
	}
	if simplified != "" && simplified != baseNorm && !strings.EqualFold(simplified, base) {
		candidates = append(candidates,
			"intitle:"+simplified,
			`"`+simplified+`"`,
			simplified+" Golbasi Ankara",
		)
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
