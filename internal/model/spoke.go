package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// RunMode selects between a dry-run report and a full generation pass.
type RunMode string

const (
	ModePreview  RunMode = "preview"
	ModeGenerate RunMode = "generate"
)

// Valid reports whether the mode is one of the two supported values.
func (m RunMode) Valid() bool {
	return m == ModePreview || m == ModeGenerate
}

// SpokeTag marks generated spoke pages in frontmatter tags. Tagged posts are
// excluded from extraction input so the factory never feeds on its own output.
const SpokeTag = "seo-spoke"

// SupportedLocales is the default locale set for content walks and generation.
var SupportedLocales = []string{"ja", "en", "zh"}

// SourcePost is one published article considered as extraction input.
type SourcePost struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	City     string   `json:"city"`
	Slug     string   `json:"slug"`
	Locale   string   `json:"locale"`
	AnimeIDs []string `json:"animeIds"`
	Tags     []string `json:"tags"`
}

// Usable reports whether the post carries enough signal to mine: a path, a
// title, and at least one anime association.
func (p SourcePost) Usable() bool {
	return strings.TrimSpace(p.Path) != "" &&
		strings.TrimSpace(p.Title) != "" &&
		len(p.AnimeIDs) > 0
}

// HasTag reports whether the post carries the given frontmatter tag.
func (p SourcePost) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SpokeCandidate is one proposed (place, anime) spoke topic, produced by
// extraction and not yet deduplicated or ranked.
type SpokeCandidate struct {
	CanonicalPlaceKey string   `json:"canonicalPlaceKey"`
	PlaceName         string   `json:"placeName"`
	AnimeID           string   `json:"animeId"`
	City              string   `json:"city"`
	SlugBase          string   `json:"slugBase"`
	Reason            string   `json:"reason"`
	Confidence        float64  `json:"confidence"`
	SourcePaths       []string `json:"sourcePaths"`
}

// DedupKey is the candidate's identity: the same real-world place may back
// one page per anime, never more.
func (c SpokeCandidate) DedupKey() string {
	return c.AnimeID + "::" + c.CanonicalPlaceKey
}

// Validate checks the fields every downstream stage depends on, naming the
// first one that is missing.
func (c SpokeCandidate) Validate() error {
	switch {
	case strings.TrimSpace(c.AnimeID) == "":
		return eris.New("candidate: missing animeId")
	case strings.TrimSpace(c.PlaceName) == "":
		return eris.New("candidate: missing placeName")
	case strings.TrimSpace(c.CanonicalPlaceKey) == "":
		return eris.New("candidate: missing canonicalPlaceKey")
	case strings.TrimSpace(c.SlugBase) == "":
		return eris.New("candidate: missing slugBase")
	case len(c.SourcePaths) == 0:
		return eris.New("candidate: missing sourcePaths")
	}
	return nil
}

// SpokeSelectedTopic is a candidate that survived selection, with its final
// display slug assigned.
type SpokeSelectedTopic struct {
	CanonicalPlaceKey string   `json:"canonicalPlaceKey"`
	PlaceName         string   `json:"placeName"`
	AnimeID           string   `json:"animeId"`
	City              string   `json:"city"`
	Slug              string   `json:"slug"`
	Reason            string   `json:"reason"`
	Confidence        float64  `json:"confidence"`
	SourcePaths       []string `json:"sourcePaths"`
}

// SpokeFrontmatter is the full frontmatter of a generated document.
type SpokeFrontmatter struct {
	Title             string   `json:"title" yaml:"title"`
	SEOTitle          string   `json:"seoTitle" yaml:"seoTitle"`
	Description       string   `json:"description" yaml:"description"`
	Slug              string   `json:"slug" yaml:"slug"`
	AnimeID           string   `json:"animeId" yaml:"animeId"`
	City              string   `json:"city" yaml:"city"`
	Language          string   `json:"language" yaml:"language"`
	Tags              []string `json:"tags" yaml:"tags"`
	PublishDate       string   `json:"publishDate" yaml:"publishDate"`
	Status            string   `json:"status" yaml:"status"`
	CanonicalPlaceKey string   `json:"canonicalPlaceKey" yaml:"canonicalPlaceKey"`
}

// SpokeGeneratedDoc is one rendered document for a (topic, locale) pair.
type SpokeGeneratedDoc struct {
	Locale      string           `json:"locale"`
	Slug        string           `json:"slug"`
	Path        string           `json:"path"`
	Frontmatter SpokeFrontmatter `json:"frontmatter"`
	Content     string           `json:"content"`
	RawMDX      string           `json:"rawMdx"`
}

// SpokeDocRef is the on-disk identity of an existing spoke document.
type SpokeDocRef struct {
	Path              string `json:"path"`
	AnimeID           string `json:"animeId"`
	CanonicalPlaceKey string `json:"canonicalPlaceKey"`
}

// ExistingIndex holds the identities already published, used to keep reruns
// from generating the same page twice.
type ExistingIndex struct {
	Slugs         map[string]struct{}
	CanonicalKeys map[string]struct{}
}

// NewExistingIndex returns an empty index.
func NewExistingIndex() *ExistingIndex {
	return &ExistingIndex{
		Slugs:         make(map[string]struct{}),
		CanonicalKeys: make(map[string]struct{}),
	}
}

// HasSlug reports whether a display slug is already taken.
func (idx *ExistingIndex) HasSlug(slug string) bool {
	_, ok := idx.Slugs[slug]
	return ok
}

// HasCanonicalKey reports whether an (animeId, canonicalPlaceKey) identity is
// already published.
func (idx *ExistingIndex) HasCanonicalKey(key string) bool {
	_, ok := idx.CanonicalKeys[key]
	return ok
}
