package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/config"
	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/pkg/anthropic"
)

// fallbackConfidence is assigned to heuristically derived candidates.
const fallbackConfidence = 0.55

const extractSystemText = "You are an editor mining a corpus of published anime-pilgrimage articles for concrete, location-specific spoke page topics. Return strict JSON only, no prose."

const extractPromptTemplate = `From the source articles below, extract real-world place candidates for standalone SEO spoke pages. Each candidate ties one specific place to one anime.

Rules:
- canonicalPlaceKey: normalized ASCII lowercase identifier for the place, max 80 chars
- slugBase: short ASCII base for the URL slug
- confidence: 0.0-1.0, how well the sources support a dedicated page
- sourcePaths: paths of the articles that mention the place (at least one)
- reason: one sentence of provenance

Return a JSON object shaped exactly:
{"candidates":[{"canonicalPlaceKey":"...","placeName":"...","animeId":"...","city":"...","slugBase":"...","reason":"...","confidence":0.8,"sourcePaths":["..."]}]}

Source articles:
%s`

// CollectSourcePosts filters the published-post list to usable extraction
// input: posts not already tagged as generated spoke pages, with a non-empty
// path, title, and at least one animeId.
func CollectSourcePosts(posts []model.SourcePost) []model.SourcePost {
	var sources []model.SourcePost
	for _, p := range posts {
		if p.HasTag(model.SpokeTag) {
			continue
		}
		if !p.Usable() {
			continue
		}
		sources = append(sources, p)
	}
	return sources
}

// aiCandidateRow mirrors one row of the strict-JSON extraction response.
type aiCandidateRow struct {
	CanonicalPlaceKey string   `json:"canonicalPlaceKey"`
	PlaceName         string   `json:"placeName"`
	AnimeID           string   `json:"animeId"`
	City              string   `json:"city"`
	SlugBase          string   `json:"slugBase"`
	Reason            string   `json:"reason"`
	Confidence        float64  `json:"confidence"`
	SourcePaths       []string `json:"sourcePaths"`
}

// ExtractCandidatesWithAI mines candidates from at most maxSources posts via
// one model call. Invalid rows are dropped individually rather than failing
// the batch; the returned slice may be empty.
func ExtractCandidatesWithAI(ctx context.Context, sources []model.SourcePost, ai anthropic.Client, modelID string, maxSources int) ([]model.SpokeCandidate, error) {
	if maxSources <= 0 {
		maxSources = 120
	}
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	var b strings.Builder
	for _, p := range sources {
		fmt.Fprintf(&b, "- path: %s | title: %s | city: %s | animeIds: %s\n",
			p.Path, p.Title, p.City, strings.Join(p.AnimeIDs, ","))
	}

	prompt := fmt.Sprintf(extractPromptTemplate, b.String())
	text, err := anthropic.Complete(ctx, ai, modelID, extractSystemText, prompt, 4096)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Candidates []aiCandidateRow `json:"candidates"`
	}
	if !DecodeLoose(text, &parsed) {
		zap.L().Warn("extract: candidate response is not valid JSON")
		return nil, nil
	}

	var out []model.SpokeCandidate
	for _, row := range parsed.Candidates {
		c := model.SpokeCandidate{
			CanonicalPlaceKey: NormalizeCanonicalKey(row.CanonicalPlaceKey),
			PlaceName:         strings.TrimSpace(row.PlaceName),
			AnimeID:           strings.TrimSpace(row.AnimeID),
			City:              strings.TrimSpace(row.City),
			SlugBase:          Slugify(row.SlugBase),
			Reason:            strings.TrimSpace(row.Reason),
			Confidence:        clamp01(row.Confidence),
			SourcePaths:       compactStrings(row.SourcePaths),
		}
		if err := c.Validate(); err != nil {
			zap.L().Warn("extract: dropping invalid candidate row",
				zap.String("place", row.PlaceName),
				zap.Error(err),
			)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FallbackCandidates derives one candidate per source post from its first
// animeId and cleaned primary title. Deterministic; guarantees the pipeline
// has something to select from whenever usable source material exists.
func FallbackCandidates(sources []model.SourcePost) []model.SpokeCandidate {
	var out []model.SpokeCandidate
	for _, p := range sources {
		title := CleanTitle(p.Title)
		c := model.SpokeCandidate{
			CanonicalPlaceKey: NormalizeCanonicalKey(title),
			PlaceName:         title,
			AnimeID:           p.AnimeIDs[0],
			City:              p.City,
			SlugBase:          Slugify(title),
			Reason:            "fallback: derived from source post title",
			Confidence:        fallbackConfidence,
			SourcePaths:       []string{p.Path},
		}
		if c.Validate() != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MergeDuplicateCandidates collapses candidates sharing a
// (animeId, canonicalPlaceKey) pair. The higher-confidence item keeps its
// scalar fields (first seen wins ties), but sourcePaths are always unioned:
// confidence reflects description quality, provenance must never shrink.
func MergeDuplicateCandidates(items []model.SpokeCandidate) []model.SpokeCandidate {
	byKey := make(map[string]int, len(items))
	var out []model.SpokeCandidate

	for _, c := range items {
		idx, ok := byKey[c.DedupKey()]
		if !ok {
			byKey[c.DedupKey()] = len(out)
			out = append(out, c)
			continue
		}

		existing := out[idx]
		merged := existing
		if c.Confidence > existing.Confidence {
			merged = c
		}
		merged.SourcePaths = unionStrings(existing.SourcePaths, c.SourcePaths)
		out[idx] = merged
	}
	return out
}

// ExtractSpokeCandidates runs the full extraction stage: AI first, degrading
// to the deterministic heuristic whenever the model yields zero usable
// candidates. AI failure here is never fatal.
func ExtractSpokeCandidates(ctx context.Context, posts []model.SourcePost, ai anthropic.Client, aiCfg config.AnthropicConfig, maxSources int) []model.SpokeCandidate {
	sources := CollectSourcePosts(posts)
	if len(sources) == 0 {
		return nil
	}

	candidates, err := ExtractCandidatesWithAI(ctx, sources, ai, aiCfg.ExtractModel, maxSources)
	if err != nil {
		zap.L().Warn("extract: ai extraction failed, using fallback",
			zap.Int("sources", len(sources)),
			zap.Error(err),
		)
	}
	if len(candidates) == 0 {
		candidates = FallbackCandidates(sources)
	}

	return MergeDuplicateCandidates(candidates)
}

// compactStrings trims entries and drops empties, preserving order.
func compactStrings(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// unionStrings merges b into a, preserving first-seen order.
func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
