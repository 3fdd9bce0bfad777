package identity

import "context"

// Provider is the surface of the external identity provider consumed by the
// session store. Implementations never hold session state; they translate
// operations into provider API calls.
type Provider interface {
	// SignUp creates a new email-password account and signs it in.
	SignUp(ctx context.Context, email, password string) (*Identity, *Credentials, error)

	// SignIn authenticates an existing email-password account.
	SignIn(ctx context.Context, email, password string) (*Identity, *Credentials, error)

	// FederatedSignIn runs the authorization-code flow against the named
	// federated provider ("google" or "github") and exchanges the result
	// for provider credentials.
	FederatedSignIn(ctx context.Context, provider string) (*Identity, *Credentials, error)

	// SignOut revokes the refresh token server-side.
	SignOut(ctx context.Context, refreshToken string) error

	// Refresh exchanges a refresh token for fresh credentials.
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)

	// Lookup resolves an access token back to its Identity.
	Lookup(ctx context.Context, accessToken string) (*Identity, error)

	// UpdateProfile changes display name and/or photo URL on the account.
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*Identity, error)
}
