package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seichimap/spoke-cli/internal/config"
	"github.com/seichimap/spoke-cli/internal/model"
)

type fakeRepo struct {
	posts []model.SourcePost
	docs  []model.SpokeDocRef
	err   error
}

func (r *fakeRepo) ListPublishedPosts(ctx context.Context) ([]model.SourcePost, error) {
	return r.posts, r.err
}

func (r *fakeRepo) ListSpokeDocs(ctx context.Context) ([]model.SpokeDocRef, error) {
	return r.docs, r.err
}

func pipelineConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{ExtractModel: "model-x", GenerateModel: "model-y"},
		Content:   config.ContentConfig{Root: "content", Locales: []string{"ja", "en"}},
		Spoke: config.SpokeConfig{
			MaxTopics:      10,
			MinConfidence:  0.45,
			MaxSources:     120,
			GenConcurrency: 2,
			GenRatePerSec:  1000,
		},
	}
}

func TestRunPreview(t *testing.T) {
	repo := &fakeRepo{posts: []model.SourcePost{
		srcPost("ja/posts/a.mdx", "Shimokitazawa Station", []string{"btr"}),
	}}
	ai := &fakeAI{err: eris.New("api down")}

	result, err := Run(context.Background(), model.ModePreview, repo, ai, pipelineConfig(), time.Now())
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, "preview", s.Mode)
	assert.Equal(t, 1, s.SourcePostCount)
	assert.Equal(t, 1, s.CandidateCount)
	assert.Equal(t, 1, s.SelectedTopics)
	assert.Zero(t, s.GeneratedFiles)
	assert.Equal(t, []string{"shimokitazawa-station-btr"}, s.Topics)
	assert.Empty(t, s.Files)
	assert.Empty(t, result.Docs, "preview writes nothing")
	assert.Nil(t, s.PRURL)
}

func TestRunGenerate(t *testing.T) {
	repo := &fakeRepo{posts: []model.SourcePost{
		srcPost("ja/posts/a.mdx", "Shimokitazawa Station", []string{"btr"}),
	}}
	ai := &fakeAI{err: eris.New("api down")}

	result, err := Run(context.Background(), model.ModeGenerate, repo, ai, pipelineConfig(), time.Now())
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, "generate", s.Mode)
	assert.Equal(t, 2, s.GeneratedFiles, "one doc per topic and locale")
	require.Len(t, result.Docs, 2)
	assert.Equal(t, []string{
		"content/ja/posts/shimokitazawa-station-btr.mdx",
		"content/en/posts/shimokitazawa-station-btr.mdx",
	}, s.Files)
	assert.Empty(t, s.Errors, "fallback docs must pass validation")
}

func TestRunSkipsAlreadyPublished(t *testing.T) {
	repo := &fakeRepo{
		posts: []model.SourcePost{
			srcPost("ja/posts/a.mdx", "Shimokitazawa Station", []string{"btr"}),
		},
		docs: []model.SpokeDocRef{{
			Path:              "content/ja/posts/old.mdx",
			AnimeID:           "btr",
			CanonicalPlaceKey: "Shimokitazawa Station",
		}},
	}
	ai := &fakeAI{err: eris.New("api down")}

	result, err := Run(context.Background(), model.ModePreview, repo, ai, pipelineConfig(), time.Now())
	require.NoError(t, err)

	assert.Zero(t, result.Summary.SelectedTopics)
	assert.Equal(t, 1, result.Summary.SkippedExisting)
}

func TestRunInvalidMode(t *testing.T) {
	_, err := Run(context.Background(), model.RunMode("bogus"), &fakeRepo{}, &fakeAI{}, pipelineConfig(), time.Now())
	assert.Error(t, err)
}

func TestRunRepoError(t *testing.T) {
	repo := &fakeRepo{err: eris.New("disk gone")}
	_, err := Run(context.Background(), model.ModePreview, repo, &fakeAI{}, pipelineConfig(), time.Now())
	assert.Error(t, err)
}
