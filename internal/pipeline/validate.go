package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seichimap/spoke-cli/internal/model"
)

// minBodyLength is the publishing contract's floor for stripped body text.
const minBodyLength = 500

// requiredFrontmatterKeys must all be present and non-empty for a document
// to pass the release gate.
var requiredFrontmatterKeys = []string{
	"title", "seoTitle", "description", "slug", "animeId", "city",
	"language", "tags", "publishDate", "status",
}

// ValidationResult reports the outcome of validating one document.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors"`
	BodyLength int      `json:"bodyLength"`
}

// DocIssue is one validation error attributed to a document path.
type DocIssue struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// ValidateDoc enforces the publishing contract on a raw MDX document. It
// only reports — the external publish step is responsible for refusing
// invalid documents. It never returns an error or panics.
func ValidateDoc(rawMdx string) ValidationResult {
	var result ValidationResult

	fm, body, ok := splitRawMDX(rawMdx)
	if !ok {
		result.Errors = append(result.Errors, "missing or malformed frontmatter block")
		result.BodyLength = StrippedBodyLength(rawMdx)
		return result
	}

	for _, key := range requiredFrontmatterKeys {
		if !frontmatterValuePresent(fm[key]) {
			result.Errors = append(result.Errors, fmt.Sprintf("missing required frontmatter key: %s", key))
		}
	}

	result.Errors = append(result.Errors, validateTags(fm["tags"])...)

	if status, _ := fm["status"].(string); status != "" && status != "published" {
		result.Errors = append(result.Errors, fmt.Sprintf("status must be published, got %q", status))
	}

	result.BodyLength = StrippedBodyLength(body)
	if result.BodyLength < minBodyLength {
		result.Errors = append(result.Errors, fmt.Sprintf("body too short: %d chars after stripping, need %d", result.BodyLength, minBodyLength))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateAll flattens per-document validation errors into (path, error)
// pairs across a batch.
func ValidateAll(docs []model.SpokeGeneratedDoc) []DocIssue {
	var issues []DocIssue
	for _, doc := range docs {
		res := ValidateDoc(doc.RawMDX)
		for _, e := range res.Errors {
			issues = append(issues, DocIssue{Path: doc.Path, Err: e})
		}
	}
	return issues
}

// splitRawMDX separates the leading frontmatter block from the body.
func splitRawMDX(raw string) (map[string]any, string, bool) {
	text := strings.TrimPrefix(raw, "\ufeff")
	if !strings.HasPrefix(text, "---") {
		return nil, "", false
	}
	rest := text[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, "", false
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, "", false
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return fm, body, true
}

// validateTags enforces the shape of the tags field: it must be an array,
// and a non-empty one must carry the spoke marker. A missing or empty value
// is already reported by the required-key loop.
func validateTags(v any) []string {
	if v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return []string{"tags must be an array"}
	}
	if len(items) == 0 {
		return nil
	}
	if !containsString(toStringSlice(v), model.SpokeTag) {
		return []string{fmt.Sprintf("tags must include %s", model.SpokeTag)}
	}
	return nil
}

func frontmatterValuePresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	default:
		return true
	}
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsString(items []string, want string) bool {
	for _, s := range items {
		if s == want {
			return true
		}
	}
	return false
}

var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	inlineCodeRe = regexp.MustCompile("`([^`\n]*)`")
	listMarkRe   = regexp.MustCompile(`(?m)^\s*(?:[-+*]|\d+\.)\s+`)
	punctRe      = regexp.MustCompile("[#*_>~`|]")
	spaceRe      = regexp.MustCompile(`\s+`)
)

// StrippedBodyLength counts the characters of a markdown body after removing
// code fences, inline code markers, images, link targets, and markdown
// punctuation. Lengths are rune counts, so CJK text is measured fairly.
func StrippedBodyLength(body string) int {
	text := fencedCodeRe.ReplaceAllString(body, " ")
	text = imageRe.ReplaceAllString(text, " ")
	text = linkRe.ReplaceAllString(text, "$1")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = listMarkRe.ReplaceAllString(text, "")
	text = punctRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return len([]rune(strings.TrimSpace(text)))
}
