package placephotos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// allowedExts are the image types the website serves.
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ErrUnsupportedImage reports a manual file that is missing or has a
// disallowed extension. Manual flows surface it to the operator and skip or
// re-prompt; it never aborts a run.
var ErrUnsupportedImage = errors.New("unsupported image file")

// FindLocalFile returns the image already on disk for key, a file whose stem
// equals the key with any allowed extension, or "" when there is none.
// Matches are sorted so repeated runs see the same file.
func FindLocalFile(outDir, key string) string {
	if outDir == "" || key == "" {
		return ""
	}
	matches, err := filepath.Glob(filepath.Join(outDir, key+".*"))
	if err != nil {
		return ""
	}
	sort.Strings(matches)
	for _, m := range matches {
		if !allowedExts[strings.ToLower(filepath.Ext(m))] {
			continue
		}
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m
		}
	}
	return ""
}

// AssignLocalFile copies a manually chosen image into the output directory
// under the entity's key and records it in the manifest, flushing immediately
// so the website reflects the upload without waiting for the rest of the
// session. A previously saved file with a different extension is removed so
// the key maps to exactly one image.
func (cfg *Config) AssignLocalFile(m *Manifest, ent Entity, srcPath string) (string, error) {
	cfg.defaults()

	key := NormalizeKey(ent.Name)
	if key == "" {
		return "", fmt.Errorf("entity %q yields an empty key", ent.Name)
	}

	src := filepath.Clean(srcPath)
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s does not exist", ErrUnsupportedImage, src)
	}
	ext := strings.ToLower(filepath.Ext(src))
	if !allowedExts[ext] {
		return "", fmt.Errorf("%w: extension %q (want jpg, png, or webp)", ErrUnsupportedImage, ext)
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(cfg.OutDir, key+ext)

	// Drop a stale image saved under another extension.
	if old := FindLocalFile(cfg.OutDir, key); old != "" && old != dest {
		os.Remove(old)
	}

	data, err := copyFile(src, dest)
	if err != nil {
		return "", err
	}

	rec := &ManifestRecord{
		Path:     strp(sitePath(cfg.WebRoot, dest)),
		Name:     ent.Name,
		Category: ent.Category,
		Source:   strp(SourceLocal),
	}
	// Provenance of a hand-picked file is unknown; embedded metadata is the
	// only chance to attribute it.
	if attribution := RecoverAttribution(data); attribution != "" {
		rec.Attribution = strp(attribution)
	}
	m.Upsert(key, rec)

	if err := m.Write(cfg.ManifestPath(), time.Now()); err != nil {
		return "", err
	}
	return dest, nil
}

func copyFile(src, dest string) ([]byte, error) {
	in, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return data, os.WriteFile(dest, data, 0o644)
}
