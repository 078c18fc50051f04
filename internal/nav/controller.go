package nav

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when an event is not accepted by the
// current screen.
var ErrInvalidTransition = errors.New("invalid screen transition")

// Event is a user action delivered to the Controller.
type Event interface {
	EventName() string
}

type SplashDone struct{}
type SignedIn struct{}
type SignedOut struct{}
type IssueSubmitted struct{}
type Back struct{}
type ToggleSatellite struct{}

// Navigate switches to a post-sign-in screen, usually from the tab bar.
type Navigate struct{ To ScreenName }

// SelectIssue highlights an issue marker on the dashboard or map.
type SelectIssue struct{ ID string }

// ToggleExpand expands an issue on the notifications screen, or collapses it
// if it is already expanded.
type ToggleExpand struct{ ID string }

func (SplashDone) EventName() string      { return "splash-done" }
func (SignedIn) EventName() string        { return "signed-in" }
func (SignedOut) EventName() string       { return "signed-out" }
func (IssueSubmitted) EventName() string  { return "issue-submitted" }
func (Back) EventName() string            { return "back" }
func (ToggleSatellite) EventName() string { return "toggle-satellite" }
func (Navigate) EventName() string        { return "navigate" }
func (SelectIssue) EventName() string     { return "select-issue" }
func (ToggleExpand) EventName() string    { return "toggle-expand" }

// Controller owns the current screen. It is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	current Screen
}

// NewController returns a controller positioned on the splash screen.
func NewController() *Controller {
	return &Controller{current: Splash{}}
}

// Current returns the active screen.
func (c *Controller) Current() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Dispatch applies ev. On error the current screen is unchanged.
func (c *Controller) Dispatch(ev Event) (Screen, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Apply(c.current, ev)
	if err != nil {
		return c.current, err
	}
	c.current = next
	return next, nil
}

// Apply computes the screen reached from s by ev without side effects.
func Apply(s Screen, ev Event) (Screen, error) {
	if s == nil || ev == nil {
		return s, fmt.Errorf("missing screen or event: %w", ErrInvalidTransition)
	}
	invalid := func() (Screen, error) {
		return s, fmt.Errorf("%s on %s: %w", ev.EventName(), s.Name(), ErrInvalidTransition)
	}

	switch e := ev.(type) {
	case SplashDone:
		if _, ok := s.(Splash); ok {
			return SignIn{}, nil
		}
	case SignedIn:
		if _, ok := s.(SignIn); ok {
			return Dashboard{}, nil
		}
	case SignedOut:
		if _, ok := s.(Profile); ok {
			return SignIn{}, nil
		}
	case IssueSubmitted:
		if _, ok := s.(AddIssue); ok {
			return Dashboard{}, nil
		}
	case Back:
		switch s.(type) {
		case AddIssue, Notifications, Map, Profile:
			return Dashboard{}, nil
		}
	case Navigate:
		if !ShowsBottomNav(s) {
			return invalid()
		}
		if next, ok := newScreen(e.To); ok {
			return next, nil
		}
	case SelectIssue:
		switch cur := s.(type) {
		case Dashboard:
			cur.SelectedIssueID = e.ID
			return cur, nil
		case Map:
			cur.SelectedIssueID = e.ID
			return cur, nil
		}
	case ToggleExpand:
		if cur, ok := s.(Notifications); ok {
			if cur.ExpandedIssueID == e.ID {
				cur.ExpandedIssueID = ""
			} else {
				cur.ExpandedIssueID = e.ID
			}
			return cur, nil
		}
	case ToggleSatellite:
		switch cur := s.(type) {
		case Dashboard:
			cur.Satellite = !cur.Satellite
			return cur, nil
		case Map:
			cur.Satellite = !cur.Satellite
			return cur, nil
		}
	}
	return invalid()
}

// Transition is one row of the navigation table.
type Transition struct {
	From  ScreenName `json:"from"`
	Event string     `json:"event"`
	To    ScreenName `json:"to"`
}

// Transitions returns the screen-changing transitions, derived from Apply.
// Events that only change per-screen state are listed with To == From.
func Transitions() []Transition {
	events := []Event{
		SplashDone{}, SignedIn{}, SignedOut{}, IssueSubmitted{}, Back{},
		SelectIssue{ID: "x"}, ToggleExpand{ID: "x"}, ToggleSatellite{},
	}
	for _, name := range ScreenNames() {
		events = append(events, Navigate{To: name})
	}

	var out []Transition
	for _, from := range []Screen{Splash{}, SignIn{}, Dashboard{}, AddIssue{}, Notifications{}, Map{}, Profile{}} {
		for _, ev := range events {
			to, err := Apply(from, ev)
			if err != nil {
				continue
			}
			label := ev.EventName()
			if n, ok := ev.(Navigate); ok {
				label = fmt.Sprintf("navigate(%s)", n.To)
			}
			out = append(out, Transition{From: from.Name(), Event: label, To: to.Name()})
		}
	}
	return out
}
