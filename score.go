package placephotos

import "strings"

// ImageCandidate is a scored, downloadable selection. Transient: it is either
// fetched immediately or discarded, never persisted as-is.
type ImageCandidate struct {
	URL         string
	Attribution string
	Source      string
}

func tokenSet(text string) map[string]struct{} {
	tokens := TokenizeForMatch(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// TokenOverlapScore returns the Jaccard index of the stop-word-filtered token
// sets of an entity name and a candidate title. An empty set on either side
// scores zero.
func TokenOverlapScore(entityName, candidateTitle string) float64 {
	q := tokenSet(entityName)
	c := tokenSet(candidateTitle)
	if len(q) == 0 || len(c) == 0 {
		return 0
	}
	inter := 0
	for t := range q {
		if _, ok := c[t]; ok {
			inter++
		}
	}
	union := len(q) + len(c) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ScoreAndSelect ranks one provider call's candidates against the entity name
// and returns the best, or nil when there are none. A single-result response
// skips scoring entirely and takes that result. Ties keep the first-seen
// candidate, i.e. the provider's native rank order.
func ScoreAndSelect(entityName string, candidates []RawCandidate) *ImageCandidate {
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0]
	if len(candidates) > 1 {
		bestScore := TokenOverlapScore(entityName, best.Title)
		for _, c := range candidates[1:] {
			if s := TokenOverlapScore(entityName, c.Title); s > bestScore {
				bestScore = s
				best = c
			}
		}
	}

	return &ImageCandidate{
		URL:         best.URL,
		Attribution: buildAttribution(best),
		Source:      best.Source,
	}
}

// buildAttribution joins provenance label, title, creator, and license with
// pipes, omitting absent fields. Commons artist values carry HTML markup.
func buildAttribution(c RawCandidate) string {
	parts := make([]string, 0, 4)
	if c.Label != "" {
		parts = append(parts, c.Label)
	}
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if creator := StripHTML(c.Creator); creator != "" {
		parts = append(parts, "Creator: "+creator)
	}
	if lic := StripHTML(c.License); lic != "" {
		parts = append(parts, "License: "+lic)
	}
	return strings.Join(parts, " | ")
}
