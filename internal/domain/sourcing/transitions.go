package sourcing

import (
	"fmt"
	"sort"
)

// Status is the lifecycle state of a sourcing request.
type Status string

const (
	StatusOpen      Status = "open"
	StatusSourcing  Status = "sourcing"
	StatusSourced   Status = "sourced"
	StatusFulfilled Status = "fulfilled"
	StatusLost      Status = "lost"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusSourcing, StatusSourced, StatusFulfilled, StatusLost}

var transitions = map[Status][]Status{
	StatusOpen:      {StatusSourcing},
	StatusSourcing:  {StatusSourced},
	StatusSourced:   {StatusFulfilled, StatusLost},
	StatusFulfilled: {},
	StatusLost:      {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Successors returns the statuses reachable in one step from s, sorted.
func Successors(s Status) []Status {
	out := append([]Status(nil), transitions[s]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanTransition reports whether a request may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when the move is not allowed.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition{From: from, To: to}
	}
	return nil
}

// ErrInvalidTransition is returned for a status change outside the lifecycle.
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
