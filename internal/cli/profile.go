package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forumx/forumx/internal/forum"
	"github.com/forumx/forumx/internal/identity"
	"github.com/forumx/forumx/internal/user"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(
		newProfileShowCmd(app),
		newProfileEditCmd(app),
		newProfileUploadCmd(app),
	)

	return cmd
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile and recent posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAuthenticated("/dashboard/profile"); err != nil {
				return err
			}

			email := app.Session.Identity().Email
			record, err := app.Users.Get(ctx, email)
			if err != nil {
				return err
			}
			posts, err := app.Forum.PostsByAuthor(ctx, email)
			if err != nil {
				return err
			}

			if app.JSON {
				return printJSON(app.Out, struct {
					Profile *user.User   `json:"profile"`
					Posts   []forum.Post `json:"posts"`
				}{record, posts})
			}
			renderProfile(app.Out, record)
			renderPosts(app.Out, posts)
			return nil
		},
	}
}

func newProfileEditCmd(app *App) *cobra.Command {
	var about string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update your about-me text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/dashboard/profile"); err != nil {
				return err
			}

			email := app.Session.Identity().Email
			if err := app.Users.Apply(cmd.Context(), email, user.Update{AboutMe: &about}); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Profile updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&about, "about", "", "about-me text")

	return cmd
}

func newProfileUploadCmd(app *App) *cobra.Command {
	var cover bool

	cmd := &cobra.Command{
		Use:   "upload <image-file>",
		Short: "Upload a profile (or cover) image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAuthenticated("/dashboard/profile"); err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			defer file.Close()

			hostedURL, err := app.Uploads.UploadImage(ctx, filepath.Base(args[0]), file)
			if err != nil {
				return err
			}

			email := app.Session.Identity().Email
			update := user.Update{PhotoURL: &hostedURL}
			if cover {
				update = user.Update{CoverURL: &hostedURL}
			}
			if err := app.Users.Apply(ctx, email, update); err != nil {
				return err
			}

			if !cover {
				// Keep the identity provider's photo in sync with the record.
				if _, err := app.Session.UpdateProfile(ctx, identity.ProfileUpdate{PhotoURL: &hostedURL}); err != nil {
					return err
				}
			}

			fmt.Fprintf(app.Out, "Image uploaded: %s\n", hostedURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cover, "cover", false, "set the cover image instead of the profile photo")

	return cmd
}
