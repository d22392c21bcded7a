package domain

import "fmt"

// Filter selects which tasks the board shows. Pure UI state, never
// persisted.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterActive       Filter = "active"
	FilterDone         Filter = "done"
	FilterAssignedToMe Filter = "assignedToMe"
	FilterAssignedByMe Filter = "assignedByMe"
)

// ParseFilter maps a raw string onto the closed filter enumeration.
// An empty string means "all".
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterDone:
		return FilterDone, nil
	case FilterAssignedToMe:
		return FilterAssignedToMe, nil
	case FilterAssignedByMe:
		return FilterAssignedByMe, nil
	default:
		return FilterAll, WrapError(ErrCodeInvalid, "unknown filter", fmt.Errorf("filter %q", raw))
	}
}

// Matches reports whether the task passes the filter for the given
// current user. "assignedByMe" means created by me, assigned, and not
// assigned to myself.
func (f Filter) Matches(t Task, currentUserID string) bool {
	switch f {
	case FilterActive:
		return !t.Done
	case FilterDone:
		return t.Done
	case FilterAssignedToMe:
		return t.AssigneeID == currentUserID
	case FilterAssignedByMe:
		return t.CreatorID == currentUserID && t.IsAssigned() && t.AssigneeID != currentUserID
	default:
		return true
	}
}
