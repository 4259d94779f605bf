package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/config"
	"github.com/seichimap/spoke-cli/internal/content"
	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/pkg/anthropic"
)

// RunResult bundles the run summary with the documents to write. Docs is
// empty in preview mode.
type RunResult struct {
	Summary *model.FactorySummary
	Docs    []model.SpokeGeneratedDoc
}

// Run executes the full factory pipeline: collect published posts, extract
// candidates, load the existing-page index, select topics, and — in generate
// mode — render and validate one document per topic and locale.
//
// Degradation is built into each stage, so Run only errors when it cannot
// even see the content tree. A run with a dead AI backend still produces a
// complete, valid result from the deterministic fallbacks.
func Run(ctx context.Context, mode model.RunMode, repo content.Repository, ai anthropic.Client, cfg *config.Config, now time.Time) (*RunResult, error) {
	if !mode.Valid() {
		return nil, eris.Errorf("pipeline: invalid mode %q", mode)
	}

	posts, err := repo.ListPublishedPosts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list published posts")
	}
	sources := CollectSourcePosts(posts)

	index, err := LoadExistingIndex(ctx, repo)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load existing index")
	}

	candidates := ExtractSpokeCandidates(ctx, posts, ai, cfg.Anthropic, cfg.Spoke.MaxSources)

	selection := SelectTopics(candidates, index, cfg.Spoke.MaxTopics, cfg.Spoke.MinConfidence)

	summary := &model.FactorySummary{
		Mode:                 string(mode),
		SourcePostCount:      len(sources),
		CandidateCount:       len(candidates),
		SelectedTopics:       len(selection.Selected),
		SkippedExisting:      selection.SkippedExisting,
		SkippedLowConfidence: selection.SkippedLowConfidence,
		Skipped:              selection.Skipped,
		Errors:               []string{},
		Topics:               make([]string, 0, len(selection.Selected)),
		Files:                []string{},
	}
	for _, t := range selection.Selected {
		summary.Topics = append(summary.Topics, t.Slug)
	}

	result := &RunResult{Summary: summary}
	if mode == model.ModePreview {
		zap.L().Info("pipeline: preview complete",
			zap.Int("sources", summary.SourcePostCount),
			zap.Int("candidates", summary.CandidateCount),
			zap.Int("selected", summary.SelectedTopics),
		)
		return result, nil
	}

	locales := cfg.Content.Locales
	if len(locales) == 0 {
		locales = model.SupportedLocales
	}

	docs := GenerateAll(ctx, selection.Selected, locales, now, ai, cfg.Anthropic, cfg.Spoke)
	for _, issue := range ValidateAll(docs) {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", issue.Path, issue.Err))
	}
	for _, doc := range docs {
		summary.Files = append(summary.Files, doc.Path)
	}
	summary.GeneratedFiles = len(docs)
	result.Docs = docs

	zap.L().Info("pipeline: generate complete",
		zap.Int("sources", summary.SourcePostCount),
		zap.Int("candidates", summary.CandidateCount),
		zap.Int("selected", summary.SelectedTopics),
		zap.Int("files", summary.GeneratedFiles),
		zap.Int("validation_errors", len(summary.Errors)),
	)
	return result, nil
}
