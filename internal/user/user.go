package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/forumx/forumx/internal/api"
)

// ErrNotFound is returned when no user record exists for an email.
var ErrNotFound = errors.New("user not found")

// User is the backend's record for an account. Membership and role live here,
// not at the identity provider.
type User struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	PhotoURL   string `json:"photoURL"`
	CoverURL   string `json:"coverURL,omitempty"`
	AboutMe    string `json:"aboutMe,omitempty"`
	Role       string `json:"role"`
	Badge      string `json:"badge"`
	Membership bool   `json:"membership"`
	CreatedAt  string `json:"createdAt"`
}

// Update carries the user-editable record fields. Nil fields are untouched.
type Update struct {
	PhotoURL *string `json:"photoURL,omitempty"`
	CoverURL *string `json:"coverURL,omitempty"`
	AboutMe  *string `json:"aboutMe,omitempty"`
}

// Service exposes the backend's user record operations.
type Service struct {
	client *api.Client
}

// NewService creates a user service over the backend API client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Register writes the initial user record after account creation. New
// accounts start as plain users with the bronze badge and no membership.
func (s *Service) Register(ctx context.Context, name, email, photoURL string) (*User, error) {
	u := User{
		Name:       name,
		Email:      email,
		PhotoURL:   photoURL,
		Role:       "user",
		Badge:      "bronze",
		Membership: false,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.client.Post(ctx, "/users", u, nil); err != nil {
		return nil, fmt.Errorf("registering user record: %w", err)
	}
	return &u, nil
}

// Get fetches the user record for an email.
func (s *Service) Get(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.client.Get(ctx, "/users/"+email, nil, &u); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching user %s: %w", email, err)
	}
	return &u, nil
}

// Apply updates the user record for an email.
func (s *Service) Apply(ctx context.Context, email string, update Update) error {
	if err := s.client.Put(ctx, "/users/"+email, update, nil); err != nil {
		return fmt.Errorf("updating user %s: %w", email, err)
	}
	return nil
}

// List fetches all user records. Admin-gated by the backend.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.Get(ctx, "/users", nil, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
