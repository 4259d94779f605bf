package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seichimap/spoke-cli/internal/config"
	"github.com/seichimap/spoke-cli/internal/model"
)

func srcPost(path, title string, animeIDs []string, tags ...string) model.SourcePost {
	return model.SourcePost{
		Path:     path,
		Title:    title,
		City:     "tokyo",
		Locale:   "ja",
		AnimeIDs: animeIDs,
		Tags:     tags,
	}
}

func TestCollectSourcePosts(t *testing.T) {
	posts := []model.SourcePost{
		srcPost("ja/posts/a.mdx", "Shimokitazawa Guide", []string{"btr"}),
		srcPost("ja/posts/spoke.mdx", "Generated Page", []string{"btr"}, model.SpokeTag),
		srcPost("ja/posts/no-anime.mdx", "General Travel Tips", nil),
		srcPost("", "Orphan", []string{"btr"}),
	}

	got := CollectSourcePosts(posts)
	require.Len(t, got, 1)
	assert.Equal(t, "ja/posts/a.mdx", got[0].Path)
}

func TestFallbackCandidates(t *testing.T) {
	sources := []model.SourcePost{
		srcPost("ja/posts/a.mdx", "Shimokitazawa Station | SeichiMap", []string{"btr", "other"}),
		srcPost("ja/posts/cjk.mdx", "下北沢", []string{"btr"}),
	}

	got := FallbackCandidates(sources)
	require.Len(t, got, 1, "title that slugifies to nothing cannot form a candidate")

	c := got[0]
	assert.Equal(t, "Shimokitazawa Station", c.PlaceName)
	assert.Equal(t, "btr", c.AnimeID, "first animeId wins")
	assert.Equal(t, "shimokitazawa-station", c.CanonicalPlaceKey)
	assert.Equal(t, "shimokitazawa-station", c.SlugBase)
	assert.Equal(t, fallbackConfidence, c.Confidence)
	assert.Equal(t, []string{"ja/posts/a.mdx"}, c.SourcePaths)
}

func TestMergeDuplicateCandidates(t *testing.T) {
	a := model.SpokeCandidate{
		CanonicalPlaceKey: "shimokitazawa-station",
		PlaceName:         "Shimokitazawa Station",
		AnimeID:           "btr",
		SlugBase:          "shimokitazawa",
		Confidence:        0.6,
		SourcePaths:       []string{"ja/posts/a.mdx"},
	}
	b := a
	b.PlaceName = "Shimokitazawa Sta."
	b.Confidence = 0.9
	b.SourcePaths = []string{"ja/posts/b.mdx", "ja/posts/a.mdx"}
	other := model.SpokeCandidate{
		CanonicalPlaceKey: "enoshima",
		PlaceName:         "Enoshima",
		AnimeID:           "ts",
		SlugBase:          "enoshima",
		Confidence:        0.5,
		SourcePaths:       []string{"ja/posts/c.mdx"},
	}

	got := MergeDuplicateCandidates([]model.SpokeCandidate{a, b, other})
	require.Len(t, got, 2)

	merged := got[0]
	assert.Equal(t, "Shimokitazawa Sta.", merged.PlaceName, "higher confidence keeps its scalar fields")
	assert.Equal(t, 0.9, merged.Confidence)
	assert.Equal(t, []string{"ja/posts/a.mdx", "ja/posts/b.mdx"}, merged.SourcePaths, "provenance is unioned in first-seen order")

	assert.Equal(t, "enoshima", got[1].CanonicalPlaceKey)
}

func TestMergeDuplicateCandidatesTieKeepsFirst(t *testing.T) {
	a := model.SpokeCandidate{
		CanonicalPlaceKey: "enoshima",
		PlaceName:         "First Seen",
		AnimeID:           "ts",
		SlugBase:          "enoshima",
		Confidence:        0.7,
		SourcePaths:       []string{"a.mdx"},
	}
	b := a
	b.PlaceName = "Second Seen"
	b.SourcePaths = []string{"b.mdx"}

	got := MergeDuplicateCandidates([]model.SpokeCandidate{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, "First Seen", got[0].PlaceName)
	assert.Equal(t, []string{"a.mdx", "b.mdx"}, got[0].SourcePaths)
}

func TestExtractCandidatesWithAI(t *testing.T) {
	sources := []model.SourcePost{
		srcPost("ja/posts/a.mdx", "Shimokitazawa Guide", []string{"btr"}),
	}

	ai := &fakeAI{text: "```json\n" + `{"candidates":[
		{"canonicalPlaceKey":"Shimokitazawa Station","placeName":"Shimokitazawa Station","animeId":"btr","city":"tokyo","slugBase":"Shimokitazawa","reason":"featured in op","confidence":1.4,"sourcePaths":["ja/posts/a.mdx"]},
		{"canonicalPlaceKey":"","placeName":"Broken Row","animeId":"btr","city":"","slugBase":"broken","reason":"","confidence":0.5,"sourcePaths":["ja/posts/a.mdx"]}
	]}` + "\n```"}

	got, err := ExtractCandidatesWithAI(context.Background(), sources, ai, "model-x", 0)
	require.NoError(t, err)
	require.Len(t, got, 1, "invalid rows are dropped, not fatal")

	c := got[0]
	assert.Equal(t, "shimokitazawa-station", c.CanonicalPlaceKey)
	assert.Equal(t, "shimokitazawa", c.SlugBase)
	assert.Equal(t, 1.0, c.Confidence, "confidence is clamped")
}

func TestExtractSpokeCandidatesFallsBack(t *testing.T) {
	posts := []model.SourcePost{
		srcPost("ja/posts/a.mdx", "Shimokitazawa Station", []string{"btr"}),
	}
	aiCfg := config.AnthropicConfig{ExtractModel: "model-x"}

	t.Run("ai error", func(t *testing.T) {
		ai := &fakeAI{err: eris.New("boom")}
		got := ExtractSpokeCandidates(context.Background(), posts, ai, aiCfg, 120)
		require.Len(t, got, 1)
		assert.Equal(t, fallbackConfidence, got[0].Confidence)
	})

	t.Run("ai returns garbage", func(t *testing.T) {
		ai := &fakeAI{text: "not json"}
		got := ExtractSpokeCandidates(context.Background(), posts, ai, aiCfg, 120)
		require.Len(t, got, 1)
		assert.Equal(t, fallbackConfidence, got[0].Confidence)
	})

	t.Run("no usable sources", func(t *testing.T) {
		ai := &fakeAI{err: eris.New("must not be called")}
		got := ExtractSpokeCandidates(context.Background(), nil, ai, aiCfg, 120)
		assert.Empty(t, got)
		assert.Zero(t, ai.calls.Load())
	})
}
