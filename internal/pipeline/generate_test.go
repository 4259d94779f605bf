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

var testTopic = model.SpokeSelectedTopic{
	CanonicalPlaceKey: "shimokitazawa-station",
	PlaceName:         "Shimokitazawa Station",
	AnimeID:           "btr",
	City:              "Tokyo",
	Slug:              "shimokitazawa-btr",
	Confidence:        0.8,
	SourcePaths:       []string{"ja/posts/src.mdx"},
}

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestGenerateDocFallback(t *testing.T) {
	ai := &fakeAI{err: eris.New("api down")}

	for _, locale := range model.SupportedLocales {
		doc := GenerateDoc(context.Background(), testTopic, locale, testNow, ai, "model-x")

		assert.Equal(t, locale, doc.Locale)
		assert.Equal(t, "shimokitazawa-btr", doc.Slug)
		assert.Equal(t, "content/"+locale+"/posts/shimokitazawa-btr.mdx", doc.Path)
		assert.Equal(t, []string{model.SpokeTag, "btr"}, doc.Frontmatter.Tags)
		assert.Equal(t, "2026-03-14", doc.Frontmatter.PublishDate)
		assert.Equal(t, "published", doc.Frontmatter.Status)
		assert.Equal(t, locale, doc.Frontmatter.Language)

		res := ValidateDoc(doc.RawMDX)
		assert.True(t, res.Valid, "fallback %s doc must pass validation: %v", locale, res.Errors)
		assert.GreaterOrEqual(t, res.BodyLength, minBodyLength)
	}
}

func TestGenerateDocPartialAIResponse(t *testing.T) {
	ai := &fakeAI{text: `{"title":"Custom Title","seoTitle":"","description":"  ","bodyMarkdown":""}`}

	doc := GenerateDoc(context.Background(), testTopic, "en", testNow, ai, "model-x")

	fallback := fallbackFields(testTopic, "en")
	assert.Equal(t, "Custom Title", doc.Frontmatter.Title, "ai field is used when present")
	assert.Equal(t, fallback.SEOTitle, doc.Frontmatter.SEOTitle, "blank ai field falls back")
	assert.Equal(t, fallback.Description, doc.Frontmatter.Description)
	assert.Contains(t, doc.Content, "Shimokitazawa Station")
}

func TestGenerateDocMalformedAIResponse(t *testing.T) {
	ai := &fakeAI{text: "here you go: title, seoTitle, ..."}

	doc := GenerateDoc(context.Background(), testTopic, "en", testNow, ai, "model-x")
	assert.Equal(t, fallbackFields(testTopic, "en").Title, doc.Frontmatter.Title)
	assert.True(t, ValidateDoc(doc.RawMDX).Valid)
}

func TestGenerateAllOrderAndCount(t *testing.T) {
	topics := []model.SpokeSelectedTopic{testTopic, {
		CanonicalPlaceKey: "enoshima",
		PlaceName:         "Enoshima",
		AnimeID:           "ts",
		City:              "Fujisawa",
		Slug:              "enoshima-ts",
		SourcePaths:       []string{"ja/posts/e.mdx"},
	}}
	locales := []string{"ja", "en"}
	ai := &fakeAI{err: eris.New("api down")}

	docs := GenerateAll(context.Background(), topics, locales, testNow, ai,
		config.AnthropicConfig{GenerateModel: "model-x"},
		config.SpokeConfig{GenConcurrency: 3, GenRatePerSec: 1000},
	)

	require.Len(t, docs, 4)
	assert.Equal(t, "shimokitazawa-btr", docs[0].Slug)
	assert.Equal(t, "ja", docs[0].Locale)
	assert.Equal(t, "shimokitazawa-btr", docs[1].Slug)
	assert.Equal(t, "en", docs[1].Locale)
	assert.Equal(t, "enoshima-ts", docs[2].Slug)
	assert.Equal(t, "ja", docs[2].Locale)
	assert.Equal(t, "enoshima-ts", docs[3].Slug)
	assert.Equal(t, "en", docs[3].Locale)
}

func TestGenerateAllEmptyInputs(t *testing.T) {
	ai := &fakeAI{}
	assert.Nil(t, GenerateAll(context.Background(), nil, []string{"ja"}, testNow, ai, config.AnthropicConfig{}, config.SpokeConfig{}))
	assert.Nil(t, GenerateAll(context.Background(), []model.SpokeSelectedTopic{testTopic}, nil, testNow, ai, config.AnthropicConfig{}, config.SpokeConfig{}))
	assert.Zero(t, ai.calls.Load())
}
