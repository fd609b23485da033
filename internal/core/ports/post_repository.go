package ports

import (
	"context"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// PostRepository defines persistence operations for blog posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// ListByAuthor returns the author's posts, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error)
}
