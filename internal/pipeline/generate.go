package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/seichimap/spoke-cli/internal/config"
	"github.com/seichimap/spoke-cli/internal/model"
	"github.com/seichimap/spoke-cli/pkg/anthropic"
)

const generateSystemText = "You are a travel writer producing anime pilgrimage landing pages. Write practical, on-the-ground content. Return strict JSON only, no prose outside the JSON."

var localeLanguageNames = map[string]string{
	"ja": "Japanese",
	"en": "English",
	"zh": "Simplified Chinese",
}

const generatePromptTemplate = `Write a standalone SEO landing page about visiting %q (%s), a real-world location featured in the anime %q. Write the entire output in %s.

The body must be markdown, at least 600 characters of plain text, and cover: why fans visit this exact spot, how to get there by public transit, how to frame the iconic shot, the best time of day, on-site etiquette toward residents, and a closing pointer to the %s anime hub page.

Return a JSON object shaped exactly:
{"title":"...","seoTitle":"...","description":"...","bodyMarkdown":"..."}`

// docFields are the AI-produced (or fallback) textual fields of a document.
type docFields struct {
	Title        string `json:"title"`
	SEOTitle     string `json:"seoTitle"`
	Description  string `json:"description"`
	BodyMarkdown string `json:"bodyMarkdown"`
}

// GenerateDoc produces the document for one (topic, locale) pair. Any AI
// failure — transport, malformed JSON, empty output — degrades per field to
// the deterministic fallback template, so a partially useful response still
// contributes whatever fields it got right. Never returns an error.
func GenerateDoc(ctx context.Context, topic model.SpokeSelectedTopic, locale string, now time.Time, ai anthropic.Client, modelID string) model.SpokeGeneratedDoc {
	fields := fallbackFields(topic, locale)

	prompt := fmt.Sprintf(generatePromptTemplate,
		topic.PlaceName, topic.City, topic.AnimeID, localeLanguageNames[locale], topic.AnimeID)

	text, err := anthropic.Complete(ctx, ai, modelID, generateSystemText, prompt, 4096)
	if err != nil {
		zap.L().Warn("generate: ai call failed, using fallback fields",
			zap.String("slug", topic.Slug),
			zap.String("locale", locale),
			zap.Error(err),
		)
	} else {
		var got docFields
		if !DecodeLoose(text, &got) {
			zap.L().Warn("generate: ai response is not valid JSON, using fallback fields",
				zap.String("slug", topic.Slug),
				zap.String("locale", locale),
			)
		} else {
			// Field-by-field substitution, not all-or-nothing.
			if s := strings.TrimSpace(got.Title); s != "" {
				fields.Title = s
			}
			if s := strings.TrimSpace(got.SEOTitle); s != "" {
				fields.SEOTitle = s
			}
			if s := strings.TrimSpace(got.Description); s != "" {
				fields.Description = s
			}
			if s := strings.TrimSpace(got.BodyMarkdown); s != "" {
				fields.BodyMarkdown = s
			}
		}
	}

	fm := model.SpokeFrontmatter{
		Title:             fields.Title,
		SEOTitle:          fields.SEOTitle,
		Description:       fields.Description,
		Slug:              topic.Slug,
		AnimeID:           topic.AnimeID,
		City:              topic.City,
		Language:          locale,
		Tags:              []string{model.SpokeTag, topic.AnimeID},
		PublishDate:       now.Format("2006-01-02"),
		Status:            "published",
		CanonicalPlaceKey: topic.CanonicalPlaceKey,
	}

	body := strings.TrimSpace(fields.BodyMarkdown)
	return model.SpokeGeneratedDoc{
		Locale:      locale,
		Slug:        topic.Slug,
		Path:        DocPath(locale, topic.Slug),
		Frontmatter: fm,
		Content:     body,
		RawMDX:      ComposeRawMDX(fm, body),
	}
}

// GenerateAll produces one document per topic×locale pair. Work fans out on
// a bounded errgroup behind a shared rate limiter; each pair is independent
// and failures are isolated per item, so the batch never aborts. Results are
// in deterministic topic-major order regardless of completion order.
func GenerateAll(ctx context.Context, topics []model.SpokeSelectedTopic, locales []string, now time.Time, ai anthropic.Client, aiCfg config.AnthropicConfig, spokeCfg config.SpokeConfig) []model.SpokeGeneratedDoc {
	if len(topics) == 0 || len(locales) == 0 {
		return nil
	}

	concurrency := spokeCfg.GenConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	perSec := spokeCfg.GenRatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSec), 1)

	docs := make([]model.SpokeGeneratedDoc, len(topics)*len(locales))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for ti, topic := range topics {
		for li, locale := range locales {
			idx := ti*len(locales) + li
			g.Go(func() error {
				// A canceled wait falls through to GenerateDoc, whose AI
				// call fails and degrades to the fallback template.
				_ = limiter.Wait(gCtx)
				docs[idx] = GenerateDoc(gCtx, topic, locale, now, ai, aiCfg.GenerateModel)
				return nil
			})
		}
	}

	_ = g.Wait()
	return docs
}
