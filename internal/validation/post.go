package validation

import "strings"

// CreatePostRequest mirrors the fields needed for post validation.
type CreatePostRequest struct {
	Title       string
	Description string
	Tags        []string
}

// ValidateCreatePostRequest validates the fields of a new post.
func ValidateCreatePostRequest(req CreatePostRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > 200 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 200 characters"})
	}

	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	}

	if len(req.Tags) == 0 {
		errs = append(errs, FieldError{Field: "tags", Message: "at least one tag is required"})
	}

	return errs
}

// CommentRequest mirrors the fields needed for comment validation.
type CommentRequest struct {
	PostID string
	Text   string
}

// ValidateCommentRequest validates the fields of a new comment or reply.
func ValidateCommentRequest(req CommentRequest) []FieldError {
	var errs []FieldError

	if req.PostID == "" {
		errs = append(errs, FieldError{Field: "postId", Message: "postId is required"})
	}
	if strings.TrimSpace(req.Text) == "" {
		errs = append(errs, FieldError{Field: "text", Message: "text is required"})
	} else if len(req.Text) > 2000 {
		errs = append(errs, FieldError{Field: "text", Message: "text must be at most 2000 characters"})
	}

	return errs
}
