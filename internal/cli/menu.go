package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forumx/forumx/internal/nav"
)

func newMenuCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the navigation available to your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, e := range nav.MainMenu() {
				fmt.Fprintf(app.Out, "%s  %-18s %s\n", e.Icon, e.Label, metaStyle.Render(e.Route))
			}

			if !app.Session.Authenticated() {
				return nil
			}

			fmt.Fprintln(app.Out)
			fmt.Fprintln(app.Out, headerStyle.Render("Dashboard"))
			for _, e := range nav.DashboardMenu(app.Roles.Resolve(cmd.Context())) {
				target := e.Route
				if target == "" {
					target = "action:" + e.Action
				}
				fmt.Fprintf(app.Out, "%s  %-18s %s\n", e.Icon, e.Label, metaStyle.Render(target))
			}
			return nil
		},
	}
}
