package placephotos

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold maps Turkish letters that survive lowercasing to their closest
// ASCII equivalents. Letters with a plain combining-mark decomposition (ü, ö,
// ç, ...) would also fall out of the NFKD pass below; ı and the dotted İ need
// the explicit mapping.
var asciiFold = strings.NewReplacer(
	"ı", "i",
	"ş", "s",
	"ğ", "g",
	"ü", "u",
	"ö", "o",
	"ç", "c",
)

// stripMarks decomposes to NFKD and drops combining marks.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// foldASCII lowercases, applies the Turkish fold table, and strips diacritics.
func foldASCII(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = asciiFold.Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return s
}

// collapse keeps [a-z0-9] and squeezes every other run into a single
// separator, trimming leading and trailing separators.
func collapse(s string, sep byte) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte(sep)
			}
			pending = false
			b.WriteByte(c)
		} else {
			pending = true
		}
	}
	return b.String()
}

// NormalizeKey derives the durable identity of an entity from its name.
// The automated fetcher, the manual uploader, and the website must all agree
// on this derivation, so it is deterministic and pure.
func NormalizeKey(name string) string {
	return collapse(foldASCII(name), '-')
}

// NormalizeForMatch is the scoring-side normalization: same folding as
// NormalizeKey but with spaces between tokens.
func NormalizeForMatch(text string) string {
	return collapse(foldASCII(text), ' ')
}

// stopTokens are generic business and location words that would otherwise
// dominate similarity scoring (every wedding hall matches "dugun salonu").
var stopTokens = map[string]struct{}{
	"dugun": {}, "dugunu": {}, "salon": {}, "salonu": {}, "salonlari": {},
	"balo": {}, "kir": {}, "bahcesi": {},
	"wedding": {}, "hall": {}, "event": {}, "events": {},
	"plaza": {}, "park": {}, "life": {}, "elite": {}, "lux": {}, "luxe": {},
	"cafe": {}, "pastane": {}, "pastanesi": {}, "firin": {}, "pasta": {},
	"ekler": {}, "ekleristan": {},
	"cicek": {}, "cicekcilik": {}, "cicekci": {}, "orkide": {},
	"foto": {}, "fotograf": {}, "fotografcilik": {}, "studyo": {}, "studio": {},
	"medya": {}, "film": {},
	"golbasi": {}, "ankara": {},
}

// TokenizeForMatch splits normalized match-text into tokens, dropping
// one-character tokens and stop words.
func TokenizeForMatch(text string) []string {
	var out []string
	for _, t := range strings.Fields(NormalizeForMatch(text)) {
		if len(t) <= 1 {
			continue
		}
		if _, stop := stopTokens[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// StripHTML removes markup tags. Commons extended metadata wraps artist names
// in anchor tags.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}
