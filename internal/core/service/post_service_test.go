package service

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/inkwellhq/inkwell/internal/core/domain"
)

type stubPostRepo struct {
	posts  []*domain.Post
	nextID int
}

func (r *stubPostRepo) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	r.nextID++
	copy := *post
	copy.ID = "post_" + strconv.Itoa(r.nextID)
	r.posts = append(r.posts, &copy)
	out := copy
	return &out, nil
}

func (r *stubPostRepo) ListByAuthor(_ context.Context, authorID string) ([]*domain.Post, error) {
	var out []*domain.Post
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			copy := *p
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func TestPostService_CreateAndList(t *testing.T) {
	repo := &stubPostRepo{}
	svc := NewPostService(repo)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, "user_1", "First", "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if first.ID == "" || first.AuthorID != "user_1" {
		t.Fatalf("unexpected post: %+v", first)
	}
	if first.ImageURL == "" {
		t.Fatalf("default image not applied")
	}

	// Force distinct creation times so ordering is observable.
	repo.posts[0].CreatedAt = time.Now().Add(-time.Minute)

	if _, err := svc.CreatePost(ctx, "user_1", "Second", "world"); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if _, err := svc.CreatePost(ctx, "user_2", "Other", "not mine"); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	posts, err := svc.ListPosts(ctx, "user_1")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "Second" || posts[1].Title != "First" {
		t.Fatalf("posts not newest-first: %s, %s", posts[0].Title, posts[1].Title)
	}
}
