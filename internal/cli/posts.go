package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forumx/forumx/internal/forum"
	"github.com/forumx/forumx/internal/user"
	"github.com/forumx/forumx/internal/validation"
)

func newPostsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage posts",
	}

	cmd.AddCommand(
		newPostsListCmd(app),
		newPostsShowCmd(app),
		newPostsCreateCmd(app),
		newPostsDeleteCmd(app),
		newPostsVoteCmd(app),
		newPostsMineCmd(app),
	)

	return cmd
}

func newPostsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := app.Forum.ListPosts(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(app.Out, posts)
			}
			renderPosts(app.Out, posts)
			return nil
		},
	}
}

func newPostsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show one post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			post, err := app.Forum.GetPost(ctx, args[0])
			if err != nil {
				return err
			}
			comments, err := app.Forum.ListComments(ctx, post.ID)
			if err != nil {
				return err
			}

			if app.JSON {
				return printJSON(app.Out, struct {
					Post     *forum.Post    `json:"post"`
					Comments []forum.Thread `json:"comments"`
				}{post, forum.Threads(comments)})
			}
			renderPost(app.Out, post)
			renderThreads(app.Out, forum.Threads(comments), 0)
			return nil
		},
	}
}

func newPostsCreateCmd(app *App) *cobra.Command {
	var (
		title       string
		description string
		tags        []string
		image       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new post",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.EnsureAuthenticated("/dashboard/add-post"); err != nil {
				return err
			}

			if errs := validation.ValidateCreatePostRequest(validation.CreatePostRequest{
				Title:       title,
				Description: description,
				Tags:        tags,
			}); len(errs) > 0 {
				return fieldErrors(errs)
			}

			id := app.Session.Identity()
			member := false
			if record, err := app.Users.Get(ctx, id.Email); err == nil {
				member = record.Membership
			} else if !errors.Is(err, user.ErrNotFound) {
				return err
			}

			post, err := app.Forum.CreatePost(ctx, forum.PostDraft{
				AuthorName:  id.DisplayName,
				AuthorEmail: id.Email,
				AuthorImage: id.PhotoURL,
				Title:       strings.TrimSpace(title),
				Description: description,
				Tags:        tags,
				Image:       image,
			}, member)
			if err != nil {
				if errors.Is(err, forum.ErrPostLimit) {
					return fmt.Errorf("%w: run 'forumx membership join'", err)
				}
				return err
			}

			fmt.Fprintf(app.Out, "Post created: %s\n", post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&description, "description", "", "post body")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "post tags")
	cmd.Flags().StringVar(&image, "image", "", "post image URL")

	return cmd
}

func newPostsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/dashboard/my-post"); err != nil {
				return err
			}
			if err := app.Forum.DeletePost(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Post deleted.")
			return nil
		},
	}
}

func newPostsVoteCmd(app *App) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "vote <post-id>",
		Short: "Upvote (or downvote) a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/post/" + args[0]); err != nil {
				return err
			}

			vote := forum.Upvote
			if down {
				vote = forum.Downvote
			}

			post, err := app.Forum.VotePost(cmd.Context(), args[0], vote, app.Session.Identity().Email)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "%s  ▲ %d  ▼ %d\n", post.Title, post.UpVote, post.DownVote)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "downvote instead of upvote")

	return cmd
}

func newPostsMineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your own posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureAuthenticated("/dashboard/my-post"); err != nil {
				return err
			}
			posts, err := app.Forum.PostsByAuthor(cmd.Context(), app.Session.Identity().Email)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(app.Out, posts)
			}
			renderPosts(app.Out, posts)
			return nil
		},
	}
}

func newTagsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List available post tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := app.Forum.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(app.Out, tags)
			}
			for _, tag := range tags {
				fmt.Fprintln(app.Out, tag.Name)
			}
			return nil
		},
	}
}
