package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seichimap/spoke-cli/internal/model"
)

func writePost(t *testing.T, root, locale, name, content string) {
	t.Helper()
	dir := filepath.Join(root, locale, "posts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestListPublishedPosts(t *testing.T) {
	root := t.TempDir()

	writePost(t, root, "ja", "hub.mdx", `---
title: "Shimokitazawa Guide"
city: "Tokyo"
slug: "shimokitazawa-guide"
animeIds: ["btr"]
tags: ["guide"]
---

body`)
	writePost(t, root, "ja", "draft.mdx", `---
title: "Unfinished"
status: "draft"
animeIds: ["btr"]
---

body`)
	writePost(t, root, "ja", "legacy.mdx", `---
title: "No Status Is Published"
animeId: "ts"
---

body`)
	writePost(t, root, "ja", "broken.mdx", "no frontmatter here")
	writePost(t, root, "ja", "notes.txt", "ignored extension")

	repo := NewFSRepository(root, []string{"ja", "en"})
	posts, err := repo.ListPublishedPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2, "draft, unparsable, and non-mdx files are excluded")

	byTitle := make(map[string]model.SourcePost)
	for _, p := range posts {
		byTitle[p.Title] = p
	}

	hub := byTitle["Shimokitazawa Guide"]
	assert.Equal(t, "ja", hub.Locale)
	assert.Equal(t, "Tokyo", hub.City)
	assert.Equal(t, []string{"btr"}, hub.AnimeIDs)

	legacy := byTitle["No Status Is Published"]
	assert.Equal(t, []string{"ts"}, legacy.AnimeIDs, "scalar animeId is accepted")
}

func TestListPublishedPostsMissingLocaleDir(t *testing.T) {
	repo := NewFSRepository(t.TempDir(), nil)
	posts, err := repo.ListPublishedPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestListSpokeDocs(t *testing.T) {
	root := t.TempDir()

	writePost(t, root, "en", "spoke.mdx", `---
title: "Shimokitazawa Station Guide"
slug: "shimokitazawa-btr"
animeId: "btr"
tags: ["seo-spoke", "btr"]
canonicalPlaceKey: "shimokitazawa-station"
status: "published"
---

body`)
	writePost(t, root, "en", "regular.mdx", `---
title: "Not A Spoke"
animeIds: ["btr"]
tags: ["guide"]
---

body`)

	repo := NewFSRepository(root, []string{"en"})
	docs, err := repo.ListSpokeDocs(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "btr", docs[0].AnimeID)
	assert.Equal(t, "shimokitazawa-station", docs[0].CanonicalPlaceKey)
	assert.Equal(t, filepath.Join(root, "en", "posts", "spoke.mdx"), docs[0].Path)
}

func TestListSpokeDocsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewFSRepository(t.TempDir(), []string{"ja"})
	_, err := repo.ListSpokeDocs(ctx)
	assert.Error(t, err)
}
