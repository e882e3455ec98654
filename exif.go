package placephotos

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bep/imagemeta"
)

// provenanceTags maps (source, tag-name) → true for the fields that can name
// an author or rights holder.
var provenanceTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"Artist":    true,
		"Copyright": true,
	},
	imagemeta.IPTC: {
		"Byline":          true,
		"Credit":          true,
		"CopyrightNotice": true,
	},
	imagemeta.XMP: {
		"Creator": true,
		"Rights":  true,
	},
}

// RecoverAttribution extracts a best-effort attribution line from embedded
// EXIF/IPTC/XMP metadata. Used for local and override images whose provenance
// is otherwise unknown. Returns "" when nothing usable is embedded; never
// fails, unparseable bytes simply yield no attribution.
func RecoverAttribution(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var artist, rights string
	err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := provenanceTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagValueString(ti.Value)
			if s == "" {
				return nil
			}
			switch ti.Tag {
			case "Artist", "Byline", "Creator":
				if artist == "" {
					artist = s
				}
			default:
				if rights == "" {
					rights = s
				}
			}
			return nil
		},
	})
	if err != nil {
		return ""
	}

	parts := make([]string, 0, 2)
	if artist != "" {
		parts = append(parts, "Creator: "+StripHTML(artist))
	}
	if rights != "" && !strings.EqualFold(rights, artist) {
		parts = append(parts, "Rights: "+StripHTML(rights))
	}
	return strings.Join(parts, " | ")
}

// tagValueString flattens a decoded tag value. XMP values may arrive as
// string slices.
func tagValueString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []string:
		return strings.TrimSpace(strings.Join(t, ", "))
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}
