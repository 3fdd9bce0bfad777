package forum

import (
	"context"
	"fmt"
	"net/url"
)

// ListComments fetches the comments of one post, replies included.
func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	q := url.Values{}
	q.Set("postId", postID)

	var comments []Comment
	if err := s.client.Get(ctx, "/comments", q, &comments); err != nil {
		return nil, fmt.Errorf("listing comments for post %s: %w", postID, err)
	}
	return comments, nil
}

// AddComment creates a comment, or a reply when the draft carries a parent id.
func (s *Service) AddComment(ctx context.Context, draft CommentDraft) (*Comment, error) {
	var created Comment
	if err := s.client.Post(ctx, "/comments", draft, &created); err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}
	return &created, nil
}

// EditComment replaces a comment's text. The backend enforces that only the
// comment's author may edit it.
func (s *Service) EditComment(ctx context.Context, id, text, userEmail string) error {
	body := map[string]string{
		"text":      text,
		"userEmail": userEmail,
	}
	if err := s.client.Patch(ctx, "/comments/"+id, body, nil); err != nil {
		return fmt.Errorf("editing comment %s: %w", id, err)
	}
	return nil
}

// DeleteComment deletes a comment.
func (s *Service) DeleteComment(ctx context.Context, id, userEmail string) error {
	body := map[string]string{"userEmail": userEmail}
	if err := s.client.Delete(ctx, "/comments/"+id, body); err != nil {
		return fmt.Errorf("deleting comment %s: %w", id, err)
	}
	return nil
}

// VoteComment records one vote on a comment, then refetches the post's
// comment list so the caller renders reconciled tallies.
func (s *Service) VoteComment(ctx context.Context, id, postID string, vote VoteType, voterEmail string) ([]Comment, error) {
	body := map[string]string{
		"type":      string(vote),
		"userEmail": voterEmail,
	}
	if err := s.client.Patch(ctx, "/comments/vote/"+id, body, nil); err != nil {
		return nil, fmt.Errorf("voting on comment %s: %w", id, err)
	}
	return s.ListComments(ctx, postID)
}

// ReportComment flags a comment for moderation with the reporter's feedback.
func (s *Service) ReportComment(ctx context.Context, id, feedback string) error {
	body := map[string]string{"feedback": feedback}
	if err := s.client.Patch(ctx, "/comments/report/"+id, body, nil); err != nil {
		return fmt.Errorf("reporting comment %s: %w", id, err)
	}
	return nil
}

// ReportedComments fetches all comments currently flagged for moderation.
func (s *Service) ReportedComments(ctx context.Context) ([]Comment, error) {
	q := url.Values{}
	q.Set("reported", "true")

	var comments []Comment
	if err := s.client.Get(ctx, "/comments", q, &comments); err != nil {
		return nil, fmt.Errorf("listing reported comments: %w", err)
	}
	return comments, nil
}

// ListTags fetches the selectable post tags.
func (s *Service) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := s.client.Get(ctx, "/tags", nil, &tags); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}
