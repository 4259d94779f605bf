// Package content reads the published content tree. The pipeline depends on
// the Repository interface only, so tests can substitute an in-memory fake.
package content

import (
	"context"

	"github.com/seichimap/spoke-cli/internal/model"
)

// Repository provides read access to the published-post corpus and the
// on-disk spoke documents.
type Repository interface {
	// ListPublishedPosts returns every published post across all locales.
	ListPublishedPosts(ctx context.Context) ([]model.SourcePost, error)

	// ListSpokeDocs returns the durable identity of every on-disk document
	// tagged as a spoke page, whether or not it is live yet.
	ListSpokeDocs(ctx context.Context) ([]model.SpokeDocRef, error)
}
