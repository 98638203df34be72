// Package route plans paths between named star systems: it resolves names,
// validates constraints, selects a planner and a graph variant, runs the
// search, and assembles the final plan with aggregate statistics.
package route

import (
	"fmt"
	"strings"
)

// UnknownSystemError means a start or goal name did not resolve. Suggestions
// carry ranked near-matches when any exist.
type UnknownSystemError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownSystemError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown system %q", e.Name)
	}
	return fmt.Sprintf("unknown system %q (did you mean: %s)",
		e.Name, strings.Join(e.Suggestions, ", "))
}

// InvalidConstraintError means the request's constraint set is contradictory
// or incomplete. Surfaced before any search work.
type InvalidConstraintError struct {
	Reason string
}

func (e *InvalidConstraintError) Error() string {
	return "invalid constraint: " + e.Reason
}

// RouteNotFoundError means the search exhausted every reachable system under
// the active constraints. Hint names the most restrictive constraint when
// one stands out.
type RouteNotFoundError struct {
	Start string
	Goal  string
	Hint  string
}

func (e *RouteNotFoundError) Error() string {
	msg := fmt.Sprintf("no route from %q to %q under the given constraints", e.Start, e.Goal)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}
