package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderation and user management (admin only)",
	}

	cmd.AddCommand(
		newAdminReportedCmd(app),
		newAdminUsersCmd(app),
		newAdminDeleteCommentCmd(app),
	)

	return cmd
}

func newAdminReportedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reported",
		Short: "List comments flagged for moderation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAdmin(ctx, "/dashboard/admin/reported"); err != nil {
				return err
			}

			comments, err := app.Forum.ReportedComments(ctx)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(app.Out, comments)
			}
			if len(comments) == 0 {
				fmt.Fprintln(app.Out, "No reported comments.")
				return nil
			}
			for _, c := range comments {
				fmt.Fprintf(app.Out, "%s  %s: %q  (feedback: %s)\n", c.ID, c.UserEmail, c.Text, c.Feedback)
			}
			return nil
		},
	}
}

func newAdminUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List all user records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAdmin(ctx, "/dashboard/admin/users"); err != nil {
				return err
			}

			users, err := app.Users.List(ctx)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(app.Out, users)
			}
			renderUsers(app.Out, users)
			return nil
		},
	}
}

func newAdminDeleteCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-comment <comment-id>",
		Short: "Remove a reported comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAdmin(ctx, "/dashboard/admin/reported"); err != nil {
				return err
			}

			if err := app.Forum.DeleteComment(ctx, args[0], app.Session.Identity().Email); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Comment removed.")
			return nil
		},
	}
}
