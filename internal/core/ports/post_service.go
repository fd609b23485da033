package ports

import (
	"context"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

// PostService covers blog post creation and listing, always scoped to the
// authenticated caller.
type PostService interface {
	CreatePost(ctx context.Context, authorID, title, content string) (*domain.Post, error)
	ListPosts(ctx context.Context, authorID string) ([]*domain.Post, error)
}
