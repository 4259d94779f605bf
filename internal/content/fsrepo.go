package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/seichimap/spoke-cli/internal/model"
)

// FSRepository reads MDX posts from a content tree laid out as
// <root>/<locale>/posts/<slug>.mdx.
type FSRepository struct {
	root    string
	locales []string
}

// NewFSRepository creates a filesystem-backed repository.
func NewFSRepository(root string, locales []string) *FSRepository {
	if len(locales) == 0 {
		locales = model.SupportedLocales
	}
	return &FSRepository{root: root, locales: locales}
}

// frontmatter is the superset of keys read from post files. animeId appears
// as a scalar in generated docs and as an animeIds list in authored posts;
// both are accepted.
type frontmatter struct {
	Title             string   `yaml:"title"`
	City              string   `yaml:"city"`
	Slug              string   `yaml:"slug"`
	Status            string   `yaml:"status"`
	AnimeID           string   `yaml:"animeId"`
	AnimeIDs          []string `yaml:"animeIds"`
	Tags              []string `yaml:"tags"`
	CanonicalPlaceKey string   `yaml:"canonicalPlaceKey"`
}

func (fm frontmatter) animeIDList() []string {
	if len(fm.AnimeIDs) > 0 {
		return fm.AnimeIDs
	}
	if fm.AnimeID != "" {
		return []string{fm.AnimeID}
	}
	return nil
}

// ListPublishedPosts walks every locale's posts directory. Files that fail
// to parse are skipped with a warning; a missing locale directory is not an
// error.
func (r *FSRepository) ListPublishedPosts(ctx context.Context) ([]model.SourcePost, error) {
	var posts []model.SourcePost
	err := r.walkPosts(ctx, func(path, locale string, fm frontmatter) {
		if fm.Status != "" && fm.Status != "published" {
			return
		}
		posts = append(posts, model.SourcePost{
			Path:     path,
			Title:    fm.Title,
			City:     fm.City,
			Slug:     fm.Slug,
			Locale:   locale,
			AnimeIDs: fm.animeIDList(),
			Tags:     fm.Tags,
		})
	})
	return posts, err
}

// ListSpokeDocs collects the (animeId, canonicalPlaceKey) identity of every
// on-disk document tagged as a spoke page. This deliberately reads the disk
// rather than the live post list: canonical-key identity must survive for
// documents staged but not yet indexed.
func (r *FSRepository) ListSpokeDocs(ctx context.Context) ([]model.SpokeDocRef, error) {
	var docs []model.SpokeDocRef
	err := r.walkPosts(ctx, func(path, locale string, fm frontmatter) {
		if !hasTag(fm.Tags, model.SpokeTag) {
			return
		}
		animeID := fm.AnimeID
		if animeID == "" && len(fm.AnimeIDs) > 0 {
			animeID = fm.AnimeIDs[0]
		}
		docs = append(docs, model.SpokeDocRef{
			Path:              path,
			AnimeID:           animeID,
			CanonicalPlaceKey: fm.CanonicalPlaceKey,
		})
	})
	return docs, err
}

func (r *FSRepository) walkPosts(ctx context.Context, visit func(path, locale string, fm frontmatter)) error {
	for _, locale := range r.locales {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "content: walk posts")
		}

		dir := filepath.Join(r.root, locale, "posts")
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return eris.Wrapf(err, "content: read dir %s", dir)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mdx") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			raw, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "content: read %s", path)
			}

			fm, ok := parseFrontmatter(raw)
			if !ok {
				zap.L().Warn("content: skipping file with unparsable frontmatter",
					zap.String("path", path),
				)
				continue
			}
			visit(path, locale, fm)
		}
	}
	return nil
}

// parseFrontmatter extracts and decodes the leading "---" block.
func parseFrontmatter(raw []byte) (frontmatter, bool) {
	var fm frontmatter

	text := strings.TrimPrefix(string(raw), "\ufeff")
	if !strings.HasPrefix(text, "---") {
		return fm, false
	}
	rest := text[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, false
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, false
	}
	return fm, true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
