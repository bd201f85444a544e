package trailblog

import "slices"

// State is the short code that groups posts into a trail section. Posts are
// partitioned by it in the store and in the cache.
type State string

// States is a slice of State.
type States []State

const (
	// StateUnsorted holds posts that don't belong to a trail section yet.
	StateUnsorted State = "XX"
	// StateFinish holds wrap-up posts written after the trail is done.
	StateFinish State = "finish"
)

// String returns the string representation of the State.
func (s State) String() string {
	return string(s)
}

// Valid returns true if the state is part of the fixed enumeration.
func (s State) Valid() bool {
	return DefaultStates().HasState(string(s))
}

// HasState returns true if the code belongs to the enumeration.
func (ss States) HasState(code string) bool {
	return slices.Contains(ss, State(code))
}

// DefaultStates returns the fixed enumeration of trail states, south to
// north, plus the two sentinel codes.
func DefaultStates() States {
	return States{
		"GA", "TN", "NC", "VA", "WV", "MD", "PA", "NJ", "NY", "CT", "MA", "VT", "NH", "ME",
		StateUnsorted,
		StateFinish,
	}
}
