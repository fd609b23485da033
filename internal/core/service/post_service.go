package service

import (
	"context"
	"time"

	"github.com/inkwellhq/inkwell/internal/api/metrics"
	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

// defaultPostImage decorates posts created without an illustration.
const defaultPostImage = "https://images.unsplash.com/photo-1534361960057-19889db9621e"

// PostService implements blog post creation and listing.
type PostService struct {
	posts ports.PostRepository
}

func NewPostService(posts ports.PostRepository) *PostService {
	return &PostService{posts: posts}
}

func (s *PostService) CreatePost(ctx context.Context, authorID, title, content string) (*domain.Post, error) {
	now := time.Now().UTC()
	post, err := s.posts.Create(ctx, &domain.Post{
		Title:     title,
		Content:   content,
		ImageURL:  defaultPostImage,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	metrics.PostsCreatedTotal.Inc()
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, authorID string) ([]*domain.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}
