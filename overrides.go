package placephotos

import (
	"encoding/json"
	"os"
	"strings"
)

// LoadOverrides reads a key→URL override document. Overrides are hand-curated
// direct image URLs that outrank every other resolution path. A missing or
// malformed file yields an empty map: overrides are optional and must never
// block a run.
func (cfg *Config) LoadOverrides(path string) map[string]string {
	out := map[string]string{}
	if path == "" {
		return out
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return out
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		cfg.logger().Warn("overrides file unreadable, ignoring", "path", path, "error", err)
		return out
	}

	for key, u := range raw {
		u = strings.TrimSpace(u)
		if key == "" || u == "" {
			continue
		}
		out[key] = u
	}
	return out
}
