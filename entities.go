package placephotos

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Entity is a named real-world subject needing an image. Identity is derived
// from the name via NormalizeKey, never stored.
type Entity struct {
	Name     string
	Category string
}

// ErrSourceNotFound aborts the run: without the entity source there is
// nothing to resolve.
var ErrSourceNotFound = errors.New("entity source not found")

// DefaultEntityArrays are the named array literals read from the site's
// embedded data, in site order.
var DefaultEntityArrays = []string{"GOLBASI_PLACES", "PHOTOGRAPHERS", "BAKERIES", "FLORISTS"}

var entityRecordRe = regexp.MustCompile(`(?s)\{[^}]*?name\s*:\s*"([^"]+)"[^}]*?category\s*:\s*"([^"]+)"[^}]*?\}`)

// ParseEntities extracts {name, category} records from the named array
// literals in a JS-like source document, preserving source order and dropping
// later duplicates of the same normalized key. The source is technically
// free-form text; this parser is a thin replaceable collaborator, and nothing
// in the pipeline depends on its mechanics, only on the returned sequence.
func ParseEntities(text string, arrays ...string) []Entity {
	if len(arrays) == 0 {
		arrays = DefaultEntityArrays
	}

	var blocks []string
	for _, name := range arrays {
		re := regexp.MustCompile(`(?s)const\s+` + regexp.QuoteMeta(name) + `\s*=\s*\[(.*?)\];`)
		if m := re.FindStringSubmatch(text); m != nil {
			blocks = append(blocks, m[1])
		}
	}

	var out []Entity
	seen := make(map[string]struct{})
	for _, block := range blocks {
		for _, m := range entityRecordRe.FindAllStringSubmatch(block, -1) {
			name := strings.TrimSpace(m[1])
			category := strings.TrimSpace(m[2])
			if name == "" || category == "" {
				continue
			}
			key := NormalizeKey(name)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, Entity{Name: name, Category: category})
		}
	}
	return out
}

// LoadEntities reads and parses the entity source document at path.
func LoadEntities(path string, arrays ...string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	return ParseEntities(string(data), arrays...), nil
}
