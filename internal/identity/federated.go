package identity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/forumx/forumx/internal/config"
)

// callbackResult carries the outcome of one authorization redirect.
type callbackResult struct {
	code string
	err  error
}

// FederatedFlow drives the browser-based authorization-code flow for the
// configured federated providers. A loopback HTTP server receives the
// provider's redirect and hands the authorization code back to the caller.
type FederatedFlow struct {
	providers map[string]config.OAuthProvider
	port      int
	out       io.Writer

	// OpenURL is invoked with the authorization URL the user must visit.
	// Defaults to printing the URL to out.
	OpenURL func(url string) error
}

// NewFederatedFlow creates a flow for the given provider configurations.
func NewFederatedFlow(providers map[string]config.OAuthProvider, port int, out io.Writer) *FederatedFlow {
	return &FederatedFlow{
		providers: providers,
		port:      port,
		out:       out,
	}
}

// Authorize runs the code flow for the named provider. It blocks until the
// redirect arrives or ctx is cancelled, and returns the authorization code
// together with the redirect URI used (the token exchange must repeat it).
func (f *FederatedFlow) Authorize(ctx context.Context, name string) (string, string, error) {
	provider, ok := f.providers[name]
	if !ok || provider.ClientID == "" {
		return "", "", ErrUnknownProvider
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", f.port))
	if err != nil {
		return "", "", fmt.Errorf("starting callback listener: %w", err)
	}

	redirectURI := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	state := uuid.New().String()
	results := make(chan callbackResult, 1)

	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("authorization state mismatch")}
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			fmt.Fprint(w, "Sign-in failed. You can close this window.")
			results <- callbackResult{err: fmt.Errorf("provider denied authorization: %s", errCode)}
			return
		}
		fmt.Fprint(w, "Signed in. You can close this window and return to the terminal.")
		results <- callbackResult{code: q.Get("code")}
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("callback server error", "error", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := f.buildAuthURL(provider, name, redirectURI, state)
	if err := f.open(authURL); err != nil {
		return "", "", fmt.Errorf("opening authorization URL: %w", err)
	}

	select {
	case res := <-results:
		if res.err != nil {
			return "", "", res.err
		}
		return res.code, redirectURI, nil
	case <-ctx.Done():
		return "", "", ErrFlowCancelled
	}
}

func (f *FederatedFlow) buildAuthURL(p config.OAuthProvider, name, redirectURI, state string) string {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	if name == "google" {
		q.Set("scope", "openid email profile")
	} else {
		q.Set("scope", "read:user user:email")
	}
	return p.AuthURL + "?" + q.Encode()
}

func (f *FederatedFlow) open(authURL string) error {
	if f.OpenURL != nil {
		return f.OpenURL(authURL)
	}
	_, err := fmt.Fprintf(f.out, "Visit this URL to sign in:\n\n  %s\n\n", authURL)
	return err
}
