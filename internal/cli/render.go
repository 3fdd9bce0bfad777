package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/forumx/forumx/internal/forum"
	"github.com/forumx/forumx/internal/user"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	metaStyle   = lipgloss.NewStyle().Faint(true)
	emailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	flagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func styleEmail(email string) string {
	return emailStyle.Render(email)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderPosts(w io.Writer, posts []forum.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts.")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  %s\n", metaStyle.Render(p.ID), titleStyle.Render(p.Title))
		fmt.Fprintf(w, "    %s  ▲ %d  ▼ %d  %s\n",
			metaStyle.Render(p.AuthorName), p.UpVote, p.DownVote,
			tagStyle.Render(strings.Join(p.Tags, " ")))
	}
}

func renderPost(w io.Writer, p *forum.Post) {
	fmt.Fprintln(w, titleStyle.Render(p.Title))
	fmt.Fprintf(w, "%s\n", metaStyle.Render(fmt.Sprintf("%s <%s> %s", p.AuthorName, p.AuthorEmail, p.CreatedAt)))
	fmt.Fprintln(w, p.Description)
	fmt.Fprintf(w, "▲ %d  ▼ %d  %s\n\n", p.UpVote, p.DownVote, tagStyle.Render(strings.Join(p.Tags, " ")))
}

func renderThreads(w io.Writer, threads []forum.Thread, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, t := range threads {
		c := t.Comment
		flag := ""
		if c.Reported {
			flag = "  " + flagStyle.Render("[reported]")
		}
		fmt.Fprintf(w, "%s%s %s  ▲ %d  ▼ %d%s\n", indent,
			metaStyle.Render(c.ID), titleStyle.Render(c.UserName), c.UpVote, c.DownVote, flag)
		fmt.Fprintf(w, "%s  %s\n", indent, c.Text)
		renderThreads(w, t.Replies, depth+1)
	}
}

func renderProfile(w io.Writer, u *user.User) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(u.Name), styleEmail("<"+u.Email+">"))
	badge := u.Badge
	if u.Membership {
		badge += " (gold member)"
	}
	fmt.Fprintf(w, "Badge: %s\n", badge)
	if u.AboutMe != "" {
		fmt.Fprintf(w, "About: %s\n", u.AboutMe)
	}
	fmt.Fprintln(w)
}

func renderUsers(w io.Writer, users []user.User) {
	fmt.Fprintln(w, headerStyle.Render("Users"))
	for _, u := range users {
		member := ""
		if u.Membership {
			member = "  gold"
		}
		fmt.Fprintf(w, "%-30s %-8s%s\n", u.Email, u.Role, member)
	}
}
