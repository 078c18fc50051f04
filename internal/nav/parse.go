package nav

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEvent is returned by ParseEvent for unrecognised input.
var ErrUnknownEvent = errors.New("unknown event")

// ParseEvent reads an event written as its name, with an argument after a
// colon for the events that take one: "navigate:map", "select-issue:12".
func ParseEvent(s string) (Event, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	simple := map[string]Event{
		"splash-done":      SplashDone{},
		"signed-in":        SignedIn{},
		"signed-out":       SignedOut{},
		"issue-submitted":  IssueSubmitted{},
		"back":             Back{},
		"toggle-satellite": ToggleSatellite{},
	}
	if ev, ok := simple[name]; ok {
		if hasArg {
			return nil, fmt.Errorf("%w: %s takes no argument", ErrUnknownEvent, name)
		}
		return ev, nil
	}

	if arg == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
	}
	switch name {
	case "navigate":
		to := ScreenName(strings.ToLower(arg))
		if _, ok := newScreen(to); !ok {
			return nil, fmt.Errorf("%w: cannot navigate to %q", ErrUnknownEvent, arg)
		}
		return Navigate{To: to}, nil
	case "select-issue":
		return SelectIssue{ID: arg}, nil
	case "toggle-expand":
		return ToggleExpand{ID: arg}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}
