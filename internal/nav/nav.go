package nav

import "github.com/forumx/forumx/internal/role"

// Entry describes one navigation item. Route entries navigate; Action entries
// run a named action instead.
type Entry struct {
	Key    string
	Icon   string
	Label  string
	Route  string
	Action string
	// Roles lists the roles this entry is visible to. Empty means everyone.
	Roles []string
}

// visibleTo reports whether the entry is shown for the given role.
func (e Entry) visibleTo(r string) bool {
	if len(e.Roles) == 0 {
		return true
	}
	for _, allowed := range e.Roles {
		if allowed == r {
			return true
		}
	}
	return false
}

// mainMenu is the top-level navigation.
var mainMenu = []Entry{
	{Key: "home", Icon: "⌂", Label: "Home", Route: "/"},
	{Key: "membership", Icon: "★", Label: "Membership", Route: "/membership"},
	{Key: "about", Icon: "ℹ", Label: "About", Route: "/about"},
}

// dashboardMenu is the signed-in dashboard navigation. Admin entries are
// filtered out for plain users.
var dashboardMenu = []Entry{
	{Key: "profile", Icon: "@", Label: "My Profile", Route: "/dashboard/profile"},
	{Key: "add-post", Icon: "+", Label: "Add Post", Route: "/dashboard/add-post"},
	{Key: "my-post", Icon: "≡", Label: "My Posts", Route: "/dashboard/my-post"},
	{Key: "membership", Icon: "★", Label: "Membership", Route: "/membership"},
	{Key: "reported", Icon: "⚑", Label: "Reported Comments", Route: "/dashboard/admin/reported", Roles: []string{role.Admin}},
	{Key: "users", Icon: "♟", Label: "Manage Users", Route: "/dashboard/admin/users", Roles: []string{role.Admin}},
	{Key: "logout", Icon: "⏏", Label: "Logout", Action: "logout"},
}

// MainMenu returns the top-level navigation entries.
func MainMenu() []Entry {
	return filter(mainMenu, "")
}

// DashboardMenu returns the dashboard entries visible to the given role.
func DashboardMenu(r string) []Entry {
	return filter(dashboardMenu, r)
}

func filter(entries []Entry, r string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if len(e.Roles) == 0 || e.visibleTo(r) {
			out = append(out, e)
		}
	}
	return out
}
