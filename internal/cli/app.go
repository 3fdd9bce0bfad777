package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/forumx/forumx/internal/api"
	"github.com/forumx/forumx/internal/config"
	"github.com/forumx/forumx/internal/forum"
	"github.com/forumx/forumx/internal/guard"
	"github.com/forumx/forumx/internal/identity"
	"github.com/forumx/forumx/internal/payment"
	"github.com/forumx/forumx/internal/role"
	"github.com/forumx/forumx/internal/session"
	"github.com/forumx/forumx/internal/upload"
	"github.com/forumx/forumx/internal/user"
)

// App wires the client components together. It is built once in main and
// injected into every command; nothing here is a package-level singleton.
type App struct {
	Config   *config.Config
	Session  *session.Store
	Client   *api.Client
	Roles    *role.Resolver
	Forum    *forum.Service
	Users    *user.Service
	Payments *payment.Service
	Uploads  *upload.Client

	AuthGuard  *guard.Authentication
	AdminGuard *guard.Authorization

	Out io.Writer
	// JSON switches data commands from styled output to JSON.
	JSON bool
}

// NewApp builds the application graph from configuration.
func NewApp(cfg *config.Config) *App {
	providers := map[string]config.OAuthProvider{
		"google": cfg.Google,
		"github": cfg.Github,
	}
	flow := identity.NewFederatedFlow(providers, cfg.CallbackPort, os.Stderr)
	provider := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, cfg.HTTPTimeout,
		identity.WithFederatedFlow(flow))

	sessionStore := session.NewStore(provider, session.NewFileStore(cfg.SessionFile))
	client := api.NewClient(cfg.APIBaseURL, sessionStore, cfg.HTTPTimeout)
	roles := role.NewResolver(client, sessionStore, cfg.RoleCacheTTL)
	processor := payment.NewProcessor(cfg.PaymentBaseURL, cfg.PaymentPublishableKey, cfg.HTTPTimeout)

	return &App{
		Config:     cfg,
		Session:    sessionStore,
		Client:     client,
		Roles:      roles,
		Forum:      forum.NewService(client),
		Users:      user.NewService(client),
		Payments:   payment.NewService(client, processor),
		Uploads:    upload.NewClient(cfg.UploadURL, cfg.UploadPreset, cfg.HTTPTimeout),
		AuthGuard:  guard.NewAuthentication(sessionStore),
		AdminGuard: guard.NewAuthorization(sessionStore, roles),
		Out:        os.Stdout,
	}
}

// EnsureAuthenticated runs the authentication guard for a navigation to
// route. A redirect decision aborts the command, preserving the original
// destination in the error so the login flow can return the user afterward.
func (a *App) EnsureAuthenticated(route string) error {
	switch decision := a.AuthGuard.Check(route); decision.State {
	case guard.StateLoading:
		return fmt.Errorf("session state not determined yet, try again")
	case guard.StateRedirect:
		return fmt.Errorf("sign in required: run 'forumx login --return-to %s'", decision.From)
	default:
		return nil
	}
}

// EnsureAdmin runs both guards for a navigation to an admin route: admin
// routes sit behind the authentication guard, and non-admin roles are then
// redirected to the profile fallback.
func (a *App) EnsureAdmin(ctx context.Context, route string) error {
	if err := a.EnsureAuthenticated(route); err != nil {
		return err
	}
	switch decision := a.AdminGuard.Check(ctx, route); decision.State {
	case guard.StateLoading:
		return fmt.Errorf("session state not determined yet, try again")
	case guard.StateRedirect:
		return fmt.Errorf("admin access required, see your profile at %s", decision.RedirectTo)
	default:
		return nil
	}
}
