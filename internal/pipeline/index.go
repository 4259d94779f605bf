package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seichimap/spoke-cli/internal/content"
	"github.com/seichimap/spoke-cli/internal/model"
)

// LoadExistingIndex builds the per-run idempotency index. Display slugs come
// from live published posts tagged as spoke pages, across every locale.
// Canonical keys come from on-disk documents' frontmatter — a separate,
// disk-based source, so identity holds even for documents staged but not yet
// live.
func LoadExistingIndex(ctx context.Context, repo content.Repository) (*model.ExistingIndex, error) {
	index := model.NewExistingIndex()

	posts, err := repo.ListPublishedPosts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: list published posts")
	}
	for _, p := range posts {
		if p.HasTag(model.SpokeTag) && p.Slug != "" {
			index.Slugs[p.Slug] = struct{}{}
		}
	}

	docs, err := repo.ListSpokeDocs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "index: list spoke docs")
	}
	for _, d := range docs {
		if d.AnimeID == "" || d.CanonicalPlaceKey == "" {
			continue
		}
		key := d.AnimeID + "::" + NormalizeCanonicalKey(d.CanonicalPlaceKey)
		index.CanonicalKeys[key] = struct{}{}
	}

	zap.L().Debug("index: loaded",
		zap.Int("slugs", len(index.Slugs)),
		zap.Int("canonical_keys", len(index.CanonicalKeys)),
	)
	return index, nil
}
