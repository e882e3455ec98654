package placephotos

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ManifestRecord is the persisted outcome for one entity key. Path, Source,
// and Attribution are pointers because the website distinguishes "no image
// yet" (null) from empty strings.
type ManifestRecord struct {
	Path        *string `json:"path"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Source      *string `json:"source"`
	Attribution *string `json:"attribution"`
	ContentType string  `json:"contentType,omitempty"`
	URL         string  `json:"url,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Resolved reports whether the record points at an image.
func (r *ManifestRecord) Resolved() bool {
	return r != nil && r.Path != nil && *r.Path != ""
}

// Manifest is the sole durable state of the pipeline: a key→record map plus a
// generation timestamp. It is rewritten after every single entity so that an
// interrupted run still leaves a consistent document behind.
type Manifest struct {
	GeneratedAtUtc string                     `json:"generatedAtUtc"`
	Items          map[string]*ManifestRecord `json:"items"`
}

// NewManifest returns an empty manifest stamped at now.
func NewManifest(now time.Time) *Manifest {
	return &Manifest{
		GeneratedAtUtc: formatUTC(now),
		Items:          map[string]*ManifestRecord{},
	}
}

func formatUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// LoadManifest reads the manifest at path. Tolerant by design: a missing or
// malformed document yields a fresh empty manifest, never an error, because
// recovering the manifest must not block a run (re-resolution heals it).
func LoadManifest(path string, now time.Time) *Manifest {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewManifest(now)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return NewManifest(now)
	}
	if m.GeneratedAtUtc == "" {
		m.GeneratedAtUtc = formatUTC(now)
	}
	if m.Items == nil {
		m.Items = map[string]*ManifestRecord{}
	}
	return &m
}

// Write persists the manifest: indented UTF-8 JSON with a trailing newline,
// generation timestamp refreshed. The document is staged in a temp file and
// renamed into place so an interrupt mid-write can never corrupt it.
func (m *Manifest) Write(path string, now time.Time) error {
	m.GeneratedAtUtc = formatUTC(now)
	if m.Items == nil {
		m.Items = map[string]*ManifestRecord{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Upsert stores rec under key, replacing any previous record.
func (m *Manifest) Upsert(key string, rec *ManifestRecord) {
	if m.Items == nil {
		m.Items = map[string]*ManifestRecord{}
	}
	m.Items[key] = rec
}

// MergePreseed inserts a placeholder record for every entity not yet present
// and reconciles records with files already on disk: an image named after the
// key (any allowed extension) marks the record as locally resolved even when
// the manifest never saw it; manual copies into the output directory count.
// Existing resolved records are never downgraded.
func (m *Manifest) MergePreseed(entities []Entity, outDir, webRoot string) {
	if m.Items == nil {
		m.Items = map[string]*ManifestRecord{}
	}
	for _, ent := range entities {
		key := NormalizeKey(ent.Name)
		if key == "" {
			continue
		}

		rec := m.Items[key]
		if rec == nil {
			rec = &ManifestRecord{Name: ent.Name, Category: ent.Category}
		}
		if rec.Name == "" {
			rec.Name = ent.Name
		}
		if rec.Category == "" {
			rec.Category = ent.Category
		}

		if existing := FindLocalFile(outDir, key); existing != "" {
			rec.Path = strp(sitePath(webRoot, existing))
			if rec.Source == nil {
				rec.Source = strp(SourceLocal)
			}
		}

		m.Items[key] = rec
	}
}

// sitePath converts an absolute file location into the site-relative path
// recorded in the manifest ("/img/place-photos/<file>"). When the file is not
// under webRoot the bare filename is used.
func sitePath(webRoot, file string) string {
	if webRoot != "" {
		if rel, err := filepath.Rel(webRoot, file); err == nil && !filepath.IsAbs(rel) && rel != "" && !isDotDot(rel) {
			return "/" + filepath.ToSlash(rel)
		}
	}
	return "/" + filepath.Base(file)
}

func isDotDot(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

func strp(s string) *string { return &s }
