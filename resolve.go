package placephotos

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Resolve runs the full pipeline: load the manifest, pre-seed it for every
// entity, then resolve entities one at a time in source order, flushing the
// manifest after each. Strictly sequential with a politeness delay after every
// entity that touched the network; the providers rate-limit per client, and
// a slow serial walk is the simplest way to stay under.
//
// Per-entity failures never abort the run. Cancellation is checked at the top
// of the loop; an interrupt flushes the manifest once more and returns
// ctx.Err(), leaving records for every entity processed so far.
func (cfg *Config) Resolve(ctx context.Context, entities []Entity, overrides map[string]string) (*Manifest, error) {
	cfg.defaults()

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, err
	}

	if cfg.Limit > 0 && len(entities) > cfg.Limit {
		entities = entities[:cfg.Limit]
	}

	manifest := LoadManifest(cfg.ManifestPath(), time.Now())
	manifest.MergePreseed(entities, cfg.OutDir, cfg.WebRoot)
	if err := manifest.Write(cfg.ManifestPath(), time.Now()); err != nil {
		return manifest, err
	}

	var dedupe *duplicateFilter
	if cfg.RejectDuplicates {
		dedupe = &duplicateFilter{}
	}

	total := len(entities)
	for i, ent := range entities {
		if ctx.Err() != nil {
			cfg.logger().Info("interrupted, flushing manifest", "processed", i, "total", total)
			if err := manifest.Write(cfg.ManifestPath(), time.Now()); err != nil {
				return manifest, err
			}
			return manifest, ctx.Err()
		}

		networked := cfg.resolveOne(ctx, manifest, ent, i+1, total, overrides, dedupe)
		if err := manifest.Write(cfg.ManifestPath(), time.Now()); err != nil {
			return manifest, err
		}

		if networked && i < total-1 {
			if err := cfg.pause(ctx, cfg.PoliteDelay); err != nil {
				continue // cancellation is picked up at the top of the loop
			}
		}
	}

	if err := manifest.Write(cfg.ManifestPath(), time.Now()); err != nil {
		return manifest, err
	}
	return manifest, nil
}

// resolveOne takes a single entity through the state machine:
//
//	PENDING → SHORT_CIRCUIT_OVERRIDE | SHORT_CIRCUIT_LOCAL | SEARCHING → RESOLVED | UNRESOLVED
//
// and upserts the terminal record. Returns whether any network call was made,
// so the caller knows to apply the politeness delay.
func (cfg *Config) resolveOne(ctx context.Context, manifest *Manifest, ent Entity, idx, total int, overrides map[string]string, dedupe *duplicateFilter) bool {
	key := NormalizeKey(ent.Name)
	if key == "" {
		return false
	}
	log := cfg.logger().With("entity", fmt.Sprintf("%d/%d", idx, total), "name", ent.Name)

	// Manual overrides outrank everything, including a file already on disk:
	// an operator who pinned a URL expects it to win.
	if u, ok := overrides[key]; ok && u != "" {
		cfg.resolveFromOverride(ctx, manifest, ent, key, u, log)
		return true
	}

	if existing := FindLocalFile(cfg.OutDir, key); existing != "" && !cfg.Force {
		cfg.resolveFromLocal(manifest, ent, key, existing, dedupe, log)
		return false
	}

	candidate := cfg.searchProviders(ctx, ent, log)
	if candidate == nil {
		log.Warn("no image found")
		manifest.Upsert(key, &ManifestRecord{Name: ent.Name, Category: ent.Category})
		return true
	}

	data, contentType, err := cfg.DownloadWithRetry(ctx, candidate.URL)
	if err != nil {
		log.Warn("download failed", "url", candidate.URL, "error", err)
		// Candidate metadata is persisted so the failed attempt is auditable.
		manifest.Upsert(key, &ManifestRecord{
			Name:        ent.Name,
			Category:    ent.Category,
			Source:      strp(candidate.Source),
			Attribution: strp(candidate.Attribution),
			URL:         candidate.URL,
			Error:       err.Error(),
		})
		return true
	}

	if dedupe != nil && dedupe.isDuplicate(data) {
		log.Warn("rejected duplicate image", "url", candidate.URL)
		manifest.Upsert(key, &ManifestRecord{
			Name:        ent.Name,
			Category:    ent.Category,
			Source:      strp(candidate.Source),
			Attribution: strp(candidate.Attribution),
			URL:         candidate.URL,
			Error:       "image is a duplicate of an already saved photo",
		})
		return true
	}

	dest := filepath.Join(cfg.OutDir, key+GuessExtension(contentType, candidate.URL))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		log.Warn("write failed", "file", dest, "error", err)
		manifest.Upsert(key, &ManifestRecord{
			Name:        ent.Name,
			Category:    ent.Category,
			Source:      strp(candidate.Source),
			Attribution: strp(candidate.Attribution),
			URL:         candidate.URL,
			Error:       err.Error(),
		})
		return true
	}

	manifest.Upsert(key, &ManifestRecord{
		Path:        strp(sitePath(cfg.WebRoot, dest)),
		Name:        ent.Name,
		Category:    ent.Category,
		Source:      strp(candidate.Source),
		Attribution: strp(candidate.Attribution),
		ContentType: contentType,
		URL:         candidate.URL,
	})
	log.Info("saved", "file", filepath.Base(dest), "source", candidate.Source)
	return true
}

// resolveFromOverride downloads a pinned URL. Failure leaves the entity
// unresolved with the error recorded; it does not fall through to search,
// because a stale automated pick silently replacing a curated one is worse
// than a visible gap.
func (cfg *Config) resolveFromOverride(ctx context.Context, manifest *Manifest, ent Entity, key, overrideURL string, log *slog.Logger) {
	data, contentType, err := cfg.DownloadWithRetry(ctx, overrideURL)
	if err != nil {
		log.Warn("override download failed", "url", overrideURL, "error", err)
		manifest.Upsert(key, &ManifestRecord{
			Name:        ent.Name,
			Category:    ent.Category,
			Source:      strp(SourceOverride),
			URL:         overrideURL,
			Error:       err.Error(),
		})
		return
	}

	dest := filepath.Join(cfg.OutDir, key+GuessExtension(contentType, overrideURL))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		log.Warn("override write failed", "file", dest, "error", err)
		manifest.Upsert(key, &ManifestRecord{
			Name:     ent.Name,
			Category: ent.Category,
			Source:   strp(SourceOverride),
			URL:      overrideURL,
			Error:    err.Error(),
		})
		return
	}

	manifest.Upsert(key, &ManifestRecord{
		Path:        strp(sitePath(cfg.WebRoot, dest)),
		Name:        ent.Name,
		Category:    ent.Category,
		Source:      strp(SourceOverride),
		Attribution: strp("Provided by overrides"),
		ContentType: contentType,
		URL:         overrideURL,
	})
	log.Info("saved from override", "file", filepath.Base(dest))
}

// resolveFromLocal records an image already on disk without any network work.
// Provenance of a pre-existing file is unknown, so attribution stays null
// unless the file's embedded metadata names an author.
func (cfg *Config) resolveFromLocal(manifest *Manifest, ent Entity, key, file string, dedupe *duplicateFilter, log *slog.Logger) {
	// A record that already points at this file keeps its provenance: a
	// re-run must not rewrite "openverse" history into "local".
	if prev, ok := manifest.Items[key]; ok && prev.Resolved() && *prev.Path == sitePath(cfg.WebRoot, file) {
		if dedupe != nil {
			if data, err := os.ReadFile(file); err == nil {
				dedupe.remember(data)
			}
		}
		log.Info("already resolved", "file", filepath.Base(file))
		return
	}

	rec := &ManifestRecord{
		Path:     strp(sitePath(cfg.WebRoot, file)),
		Name:     ent.Name,
		Category: ent.Category,
		Source:   strp(SourceLocal),
	}

	if data, err := os.ReadFile(file); err == nil {
		if attribution := RecoverAttribution(data); attribution != "" {
			rec.Attribution = strp(attribution)
		}
		if dedupe != nil {
			dedupe.remember(data)
		}
	}

	manifest.Upsert(key, rec)
	log.Info("using existing local file", "file", filepath.Base(file))
}

// searchProviders walks the providers in priority order, and within each
// provider the queries in specificity order, returning the first scored
// selection. A provider error for one query is logged and the next query
// tried; it never terminates the entity, let alone the run.
func (cfg *Config) searchProviders(ctx context.Context, ent Entity, log *slog.Logger) *ImageCandidate {
	queries := BuildQueries(ent.Name, ent.Category)
	for _, provider := range cfg.resolveProviders() {
		for _, query := range queries {
			raw, err := provider.Search(ctx, query)
			if err != nil {
				log.Warn("provider search failed", "provider", provider.Name(), "query", query, "error", err)
				continue
			}
			if candidate := ScoreAndSelect(ent.Name, raw); candidate != nil {
				return candidate
			}
		}
	}
	return nil
}
