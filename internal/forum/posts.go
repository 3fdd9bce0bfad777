package forum

import (
	"context"
	"fmt"
	"time"

	"github.com/forumx/forumx/internal/api"
)

// Service exposes the forum operations of the backend.
type Service struct {
	client *api.Client
}

// NewService creates a forum service over the backend API client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// ListPosts fetches all posts.
func (s *Service) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := s.client.Get(ctx, "/posts", nil, &posts); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetPost fetches one post by id.
func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	if err := s.client.Get(ctx, "/posts/"+id, nil, &post); err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", id, err)
	}
	return &post, nil
}

// PostsByAuthor fetches the posts of one author.
func (s *Service) PostsByAuthor(ctx context.Context, email string) ([]Post, error) {
	var posts []Post
	if err := s.client.Get(ctx, "/user-posts/"+email, nil, &posts); err != nil {
		return nil, fmt.Errorf("listing posts for %s: %w", email, err)
	}
	return posts, nil
}

// CreatePost creates a new post. Non-member authors are limited to
// FreePostLimit posts; the limit is checked against the author's current
// post count before the create call is issued.
func (s *Service) CreatePost(ctx context.Context, draft PostDraft, member bool) (*Post, error) {
	if !member {
		existing, err := s.PostsByAuthor(ctx, draft.AuthorEmail)
		if err != nil {
			return nil, err
		}
		if len(existing) >= FreePostLimit {
			return nil, ErrPostLimit
		}
	}

	body := struct {
		PostDraft
		UpVote    int    `json:"upVote"`
		DownVote  int    `json:"downVote"`
		CreatedAt string `json:"createdAt"`
	}{
		PostDraft: draft,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	var created Post
	if err := s.client.Post(ctx, "/posts", body, &created); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return &created, nil
}

// DeletePost deletes a post by id.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/posts/"+id, nil); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

// VotePost records one vote on a post, then refetches the post. The local
// view is only updated from the refetch; there is no optimistic tally.
func (s *Service) VotePost(ctx context.Context, id string, vote VoteType, voterEmail string) (*Post, error) {
	body := map[string]string{
		"type":      string(vote),
		"userEmail": voterEmail,
	}
	if err := s.client.Patch(ctx, "/posts/vote/"+id, body, nil); err != nil {
		return nil, fmt.Errorf("voting on post %s: %w", id, err)
	}
	return s.GetPost(ctx, id)
}
