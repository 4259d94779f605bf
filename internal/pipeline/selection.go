package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seichimap/spoke-cli/internal/model"
)

// defaultMinConfidence is the floor below which candidates are rejected
// when no threshold is configured.
const defaultMinConfidence = 0.45

// SelectionResult is the outcome of one selection pass.
type SelectionResult struct {
	Selected             []model.SpokeSelectedTopic
	SkippedExisting      int
	SkippedLowConfidence int
	Skipped              []model.SkippedItem
}

// SelectTopics ranks, dedups, and caps candidates into the generation set.
// This is the system's idempotency boundary: reruns must never re-publish
// the same place and must never collide with a manually curated slug.
//
// Deterministic given input order: normalization, a stable sort by
// confidence descending, then rejection rules applied in priority order
// (low-confidence, canonical-exists, invalid-slug, slug-exists), recording
// the first rule that fires. Accepted topics consume their slug and
// canonical key for the remainder of the pass.
func SelectTopics(candidates []model.SpokeCandidate, index *model.ExistingIndex, maxTopics int, minConfidence float64) SelectionResult {
	var result SelectionResult
	if maxTopics <= 0 {
		return result
	}
	if minConfidence <= 0 {
		minConfidence = defaultMinConfidence
	}
	if index == nil {
		index = model.NewExistingIndex()
	}

	normalized := make([]model.SpokeCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.CanonicalPlaceKey = NormalizeCanonicalKey(c.CanonicalPlaceKey)
		c.PlaceName = strings.TrimSpace(c.PlaceName)
		c.AnimeID = strings.TrimSpace(c.AnimeID)
		c.SlugBase = Slugify(c.SlugBase)
		c.Confidence = clamp01(c.Confidence)
		if err := c.Validate(); err != nil {
			result.Skipped = append(result.Skipped, model.SkippedItem{
				Reason: model.SkipInvalidCandidate,
				Value:  candidateLabel(c),
			})
			continue
		}
		normalized = append(normalized, c)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Confidence > normalized[j].Confidence
	})

	usedSlugs := make(map[string]struct{})
	usedKeys := make(map[string]struct{})

	for _, c := range normalized {
		if len(result.Selected) == maxTopics {
			break
		}

		if c.Confidence < minConfidence {
			result.SkippedLowConfidence++
			result.Skipped = append(result.Skipped, model.SkippedItem{
				Reason: model.SkipLowConfidence,
				Value:  candidateLabel(c),
			})
			continue
		}

		key := c.DedupKey()
		if _, taken := usedKeys[key]; taken || index.HasCanonicalKey(key) {
			result.SkippedExisting++
			result.Skipped = append(result.Skipped, model.SkippedItem{
				Reason: model.SkipCanonicalExists,
				Value:  key,
			})
			continue
		}

		slug := Slugify(c.SlugBase + "-" + c.AnimeID)
		if slug == "" {
			result.Skipped = append(result.Skipped, model.SkippedItem{
				Reason: model.SkipInvalidSlug,
				Value:  candidateLabel(c),
			})
			continue
		}

		if _, taken := usedSlugs[slug]; taken || index.HasSlug(slug) {
			result.SkippedExisting++
			result.Skipped = append(result.Skipped, model.SkippedItem{
				Reason: model.SkipSlugExists,
				Value:  slug,
			})
			continue
		}

		usedSlugs[slug] = struct{}{}
		usedKeys[key] = struct{}{}
		result.Selected = append(result.Selected, model.SpokeSelectedTopic{
			CanonicalPlaceKey: c.CanonicalPlaceKey,
			PlaceName:         c.PlaceName,
			AnimeID:           c.AnimeID,
			City:              c.City,
			Slug:              slug,
			Reason:            c.Reason,
			Confidence:        c.Confidence,
			SourcePaths:       c.SourcePaths,
		})
	}

	return result
}

func candidateLabel(c model.SpokeCandidate) string {
	if c.AnimeID == "" && c.CanonicalPlaceKey == "" {
		return fmt.Sprintf("place=%q", c.PlaceName)
	}
	return c.AnimeID + "::" + c.CanonicalPlaceKey
}
