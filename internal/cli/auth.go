package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/forumx/forumx/internal/identity"
	"github.com/forumx/forumx/internal/validation"
)

func newLoginCmd(app *App) *cobra.Command {
	var (
		email    string
		password string
		provider string
		returnTo string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or a federated provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if provider != "" {
				id, err := app.Session.SignInWithProvider(ctx, provider)
				if err != nil {
					return fmt.Errorf("federated sign-in failed: %w", err)
				}
				return loginDone(app, id, returnTo)
			}

			if email == "" || password == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Email").Value(&email),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			if errs := validation.ValidateSignInRequest(validation.SignInRequest{Email: email, Password: password}); len(errs) > 0 {
				return fieldErrors(errs)
			}

			id, err := app.Session.SignIn(ctx, email, password)
			if err != nil {
				return fmt.Errorf("sign-in failed: %w", err)
			}
			return loginDone(app, id, returnTo)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&provider, "provider", "", "federated provider (google or github)")
	cmd.Flags().StringVar(&returnTo, "return-to", "", "route to return to after signing in")

	return cmd
}

func loginDone(app *App, id *identity.Identity, returnTo string) error {
	fmt.Fprintf(app.Out, "Signed in as %s\n", styleEmail(id.Email))
	if returnTo != "" {
		fmt.Fprintf(app.Out, "Returning to %s\n", returnTo)
	}
	return nil
}

func newRegisterCmd(app *App) *cobra.Command {
	var (
		name     string
		email    string
		password string
		photoURL string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if name == "" || email == "" || password == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Name").Value(&name),
					huh.NewInput().Title("Email").Value(&email),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			if errs := validation.ValidateRegisterRequest(validation.RegisterRequest{Name: name, Email: email, Password: password}); len(errs) > 0 {
				return fieldErrors(errs)
			}

			id, err := app.Session.CreateAccount(ctx, email, password)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			if _, err := app.Session.UpdateProfile(ctx, identity.ProfileUpdate{
				DisplayName: &name,
				PhotoURL:    &photoURL,
			}); err != nil {
				return fmt.Errorf("setting profile: %w", err)
			}

			if _, err := app.Users.Register(ctx, name, id.Email, photoURL); err != nil {
				return fmt.Errorf("creating user record: %w", err)
			}

			fmt.Fprintf(app.Out, "Account created for %s\n", styleEmail(id.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&photoURL, "photo", "", "profile photo URL")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := app.Session.Identity()
			if id == nil {
				fmt.Fprintln(app.Out, "Not signed in.")
				return nil
			}

			err := app.Session.SignOut(cmd.Context())
			app.Roles.Invalidate(id.Email)
			if err != nil {
				return fmt.Errorf("sign-out: %w", err)
			}
			fmt.Fprintln(app.Out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity and role",
		RunE: func(cmd *cobra.Command, args []string) error {
			id := app.Session.Identity()
			if id == nil {
				fmt.Fprintln(app.Out, "Not signed in.")
				return nil
			}

			fmt.Fprintf(app.Out, "%s <%s>\n", id.DisplayName, id.Email)
			fmt.Fprintf(app.Out, "Role: %s\n", app.Roles.Resolve(cmd.Context()))
			return nil
		},
	}
}

func fieldErrors(errs []validation.FieldError) error {
	msg := "invalid input:"
	for _, fe := range errs {
		msg += fmt.Sprintf("\n  %s: %s", fe.Field, fe.Message)
	}
	return fmt.Errorf("%s", msg)
}
