package relay

import "slices"

// Action is what the fallback loop does after a candidate fails.
type Action int

const (
	Continue Action = iota
	Stop
)

func (a Action) String() string {
	if a == Stop {
		return "stop"
	}
	return "continue"
}

// FallbackPolicy maps a failed candidate's upstream status to an Action.
// StopOn wins over ContinueOn when a status appears in both.
type FallbackPolicy struct {
	StopOn     []int
	ContinueOn []int
	Default    Action
}

// DefaultFallbackPolicy stops on authorization failures, which apply to
// every candidate alike, and moves on for anything else.
func DefaultFallbackPolicy() FallbackPolicy {
	return FallbackPolicy{
		StopOn:     []int{401, 403},
		ContinueOn: []int{404, 500},
		Default:    Continue,
	}
}

// Decide returns the action for a failed candidate with the given status.
func (p FallbackPolicy) Decide(status int) Action {
	switch {
	case slices.Contains(p.StopOn, status):
		return Stop
	case slices.Contains(p.ContinueOn, status):
		return Continue
	default:
		return p.Default
	}
}
