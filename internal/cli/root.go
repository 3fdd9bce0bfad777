package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the forumx command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "forumx",
		Short:         "ForumX discussion forum client",
		Long:          "forumx is the terminal client for the ForumX discussion forum:\nbrowse and create posts, comment and vote, and manage your membership.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Single initialization point for the session's first
			// signed-in/signed-out determination.
			app.Session.Init(cmd.Context())
		},
	}

	root.PersistentFlags().BoolVar(&app.JSON, "json", false, "emit JSON instead of styled output")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newPostsCmd(app),
		newCommentsCmd(app),
		newTagsCmd(app),
		newProfileCmd(app),
		newMembershipCmd(app),
		newAdminCmd(app),
		newMenuCmd(app),
	)

	return root
}
