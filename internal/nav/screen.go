// Package nav models the app's screens as a closed set and moves between them
// with an explicit transition table.
package nav

// ScreenName identifies a screen independent of its per-screen state.
type ScreenName string

const (
	NameSplash        ScreenName = "splash"
	NameSignIn        ScreenName = "signin"
	NameDashboard     ScreenName = "dashboard"
	NameAddIssue      ScreenName = "add-issue"
	NameNotifications ScreenName = "notifications"
	NameMap           ScreenName = "map"
	NameProfile       ScreenName = "profile"
)

// Screen is implemented only by the screen types in this package.
type Screen interface {
	Name() ScreenName
	screen()
}

type Splash struct{}

type SignIn struct{}

// Dashboard shows the mini map, stats and recent issues.
type Dashboard struct {
	SelectedIssueID string `json:"selected_issue_id,omitempty"`
	Satellite       bool   `json:"satellite"`
}

type AddIssue struct{}

// Notifications lists tracked issues; at most one is expanded at a time.
type Notifications struct {
	ExpandedIssueID string `json:"expanded_issue_id,omitempty"`
}

// Map is the full-screen issue map.
type Map struct {
	SelectedIssueID string `json:"selected_issue_id,omitempty"`
	Satellite       bool   `json:"satellite"`
}

type Profile struct{}

func (Splash) Name() ScreenName        { return NameSplash }
func (SignIn) Name() ScreenName        { return NameSignIn }
func (Dashboard) Name() ScreenName     { return NameDashboard }
func (AddIssue) Name() ScreenName      { return NameAddIssue }
func (Notifications) Name() ScreenName { return NameNotifications }
func (Map) Name() ScreenName           { return NameMap }
func (Profile) Name() ScreenName       { return NameProfile }

func (Splash) screen()        {}
func (SignIn) screen()        {}
func (Dashboard) screen()     {}
func (AddIssue) screen()      {}
func (Notifications) screen() {}
func (Map) screen()           {}
func (Profile) screen()       {}

// ScreenNames returns every screen name in declaration order.
func ScreenNames() []ScreenName {
	return []ScreenName{NameSplash, NameSignIn, NameDashboard, NameAddIssue, NameNotifications, NameMap, NameProfile}
}

// ShowsBottomNav reports whether the bottom tab bar is visible on s.
func ShowsBottomNav(s Screen) bool {
	switch s.(type) {
	case Splash, SignIn:
		return false
	default:
		return true
	}
}

// Tab is an entry in the bottom tab bar.
type Tab struct {
	Label  string     `json:"label"`
	Target ScreenName `json:"target"`
}

// Tabs returns the bottom tab bar entries in display order.
func Tabs() []Tab {
	return []Tab{
		{Label: "Home", Target: NameDashboard},
		{Label: "Report", Target: NameAddIssue},
		{Label: "Notifications", Target: NameNotifications},
		{Label: "Profile", Target: NameProfile},
	}
}

// ActiveTab returns the index of the tab highlighted on s, or -1.
func ActiveTab(s Screen) int {
	for i, t := range Tabs() {
		if t.Target == s.Name() {
			return i
		}
	}
	return -1
}

func newScreen(name ScreenName) (Screen, bool) {
	switch name {
	case NameDashboard:
		return Dashboard{}, true
	case NameAddIssue:
		return AddIssue{}, true
	case NameNotifications:
		return Notifications{}, true
	case NameMap:
		return Map{}, true
	case NameProfile:
		return Profile{}, true
	default:
		return nil, false
	}
}
