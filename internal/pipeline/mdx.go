package pipeline

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/seichimap/spoke-cli/internal/model"
)

// DocPath derives the output file path for a (locale, slug) pair.
func DocPath(locale, slug string) string {
	return path.Join("content", locale, "posts", slug+".mdx")
}

// frontmatterKeyOrder is the fixed serialization order of the publishing
// contract. Validation and downstream tooling rely on this exact key set.
var frontmatterKeyOrder = []string{
	"title", "seoTitle", "description", "slug", "animeId", "city",
	"language", "tags", "publishDate", "status", "canonicalPlaceKey",
}

// SerializeFrontmatter renders the frontmatter block in fixed key order.
func SerializeFrontmatter(fm model.SpokeFrontmatter) string {
	values := map[string]string{
		"title":             yamlQuote(fm.Title),
		"seoTitle":          yamlQuote(fm.SEOTitle),
		"description":       yamlQuote(fm.Description),
		"slug":              yamlQuote(fm.Slug),
		"animeId":           yamlQuote(fm.AnimeID),
		"city":              yamlQuote(fm.City),
		"language":          yamlQuote(fm.Language),
		"tags":              yamlStringList(fm.Tags),
		"publishDate":       yamlQuote(fm.PublishDate),
		"status":            yamlQuote(fm.Status),
		"canonicalPlaceKey": yamlQuote(fm.CanonicalPlaceKey),
	}

	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range frontmatterKeyOrder {
		fmt.Fprintf(&b, "%s: %s\n", key, values[key])
	}
	b.WriteString("---\n")
	return b.String()
}

// ComposeRawMDX joins the serialized frontmatter block and the body into the
// single-string document representation.
func ComposeRawMDX(fm model.SpokeFrontmatter, body string) string {
	return SerializeFrontmatter(fm) + "\n" + strings.TrimSpace(body) + "\n"
}

// yamlQuote renders a double-quoted scalar. Go string-literal escaping is a
// subset of YAML double-quoted escaping, so strconv.Quote output is valid.
func yamlQuote(s string) string {
	return strconv.Quote(s)
}

func yamlStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = yamlQuote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
