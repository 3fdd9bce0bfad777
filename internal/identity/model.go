package identity

import (
	"errors"
	"time"
)

// Identity is the authenticated principal as issued by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

// Credentials are the provider-issued tokens for an Identity.
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the access token is past (or within skew of) its expiry.
func (c *Credentials) Expired(skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(skew).After(c.ExpiresAt)
}

// ProfileUpdate carries the profile fields an account owner may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
}

// Provider errors.
var (
	ErrInvalidCredential  = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUnauthorized       = errors.New("token rejected by identity provider")
	ErrFlowCancelled      = errors.New("federated sign-in flow cancelled")
	ErrUnknownProvider    = errors.New("unknown federated provider")
	ErrProviderUnreachable = errors.New("identity provider unavailable")
)
