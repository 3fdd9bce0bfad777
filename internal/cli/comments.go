package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forumx/forumx/internal/forum"
	"github.com/forumx/forumx/internal/validation"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and manage comments",
	}

	cmd.AddCommand(
		newCommentsListCmd(app),
		newCommentsAddCmd(app),
		newCommentsEditCmd(app),
		newCommentsDeleteCmd(app),
		newCommentsVoteCmd(app),
		newCommentsReportCmd(app),
	)

	return cmd
}

func newCommentsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <post-id>",
		Short: "List the comments of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := app.Forum.ListComments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(app.Out, forum.Threads(comments))
			}
			renderThreads(app.Out, forum.Threads(comments), 0)
			return nil
		},
	}
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var (
		text     string
		parentID string
	)

	cmd := &cobra.Command{
		Use:   "add <post-id>",
		Short: "Comment on a post, or reply with --reply-to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/post/" + args[0]); err != nil {
				return err
			}

			if errs := validation.ValidateCommentRequest(validation.CommentRequest{
				PostID: args[0],
				Text:   text,
			}); len(errs) > 0 {
				return fieldErrors(errs)
			}

			id := app.Session.Identity()
			comment, err := app.Forum.AddComment(cmd.Context(), forum.CommentDraft{
				PostID:    args[0],
				ParentID:  parentID,
				Text:      text,
				UserEmail: id.Email,
				UserName:  id.DisplayName,
				UserPhoto: id.PhotoURL,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Comment added: %s\n", comment.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "comment text")
	cmd.Flags().StringVar(&parentID, "reply-to", "", "parent comment id for a reply")

	return cmd
}

func newCommentsEditCmd(app *App) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "edit <comment-id>",
		Short: "Edit one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/dashboard"); err != nil {
				return err
			}
			if text == "" {
				return fmt.Errorf("--text is required")
			}

			if err := app.Forum.EditComment(cmd.Context(), args[0], text, app.Session.Identity().Email); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Comment updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "replacement text")

	return cmd
}

func newCommentsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/dashboard"); err != nil {
				return err
			}
			if err := app.Forum.DeleteComment(cmd.Context(), args[0], app.Session.Identity().Email); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Comment deleted.")
			return nil
		},
	}
}

func newCommentsVoteCmd(app *App) *cobra.Command {
	var (
		down   bool
		postID string
	)

	cmd := &cobra.Command{
		Use:   "vote <comment-id>",
		Short: "Upvote (or downvote) a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/post/" + postID); err != nil {
				return err
			}
			if postID == "" {
				return fmt.Errorf("--post is required")
			}

			vote := forum.Upvote
			if down {
				vote = forum.Downvote
			}

			comments, err := app.Forum.VoteComment(cmd.Context(), args[0], postID, vote, app.Session.Identity().Email)
			if err != nil {
				return err
			}
			renderThreads(app.Out, forum.Threads(comments), 0)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "downvote instead of upvote")
	cmd.Flags().StringVar(&postID, "post", "", "id of the post the comment belongs to")

	return cmd
}

func newCommentsReportCmd(app *App) *cobra.Command {
	var feedback string

	cmd := &cobra.Command{
		Use:   "report <comment-id>",
		Short: "Report a comment for moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/dashboard"); err != nil {
				return err
			}
			if feedback == "" {
				return fmt.Errorf("--feedback is required")
			}

			if err := app.Forum.ReportComment(cmd.Context(), args[0], feedback); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Comment reported.")
			return nil
		},
	}

	cmd.Flags().StringVar(&feedback, "feedback", "", "reason for the report")

	return cmd
}
