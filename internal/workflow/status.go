package workflow

import (
	"fmt"
)

// Status is the review state of an RFP question.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusInReview Status = "In Review"
	StatusApproved Status = "Approved"
)

// ErrUnknownStatus is returned by Parse for unrecognized labels.
type ErrUnknownStatus struct {
	Label string
}

func (e *ErrUnknownStatus) Error() string {
	return fmt.Sprintf("unknown status %q (must be one of Draft, In Review, Approved)", e.Label)
}

// All lists every status in workflow order.
func All() []Status {
	return []Status{StatusDraft, StatusInReview, StatusApproved}
}

// transitions is the single place workflow gating is encoded. Every status is
// currently reachable from every other; if a rule like "Approved requires an
// assigned reviewer" is ever added, it belongs here.
var transitions = map[Status]map[Status]bool{
	StatusDraft:    {StatusInReview: true, StatusApproved: true},
	StatusInReview: {StatusDraft: true, StatusApproved: true},
	StatusApproved: {StatusDraft: true, StatusInReview: true},
}

// Parse converts a label into a Status.
func Parse(label string) (Status, error) {
	s := Status(label)
	switch s {
	case StatusDraft, StatusInReview, StatusApproved:
		return s, nil
	}
	return "", &ErrUnknownStatus{Label: label}
}

// CanTransition reports whether a question may move from one status to
// another. A transition to the same status is not a transition; callers
// short-circuit that case before consulting the table.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}
