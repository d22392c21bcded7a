package rest

import (
	"strings"
	"time"

	"github.com/taskboard/client/domain"
)

// eqParam renders a PostgREST equality predicate, e.g. id=eq.42.
func eqParam(column, value string) string {
	return column + "=eq." + value
}

// inParam renders a PostgREST set-membership predicate over identifiers.
func inParam(column string, values []string) string {
	return column + "=in.(" + strings.Join(values, ",") + ")"
}

// changesPayload maps a TaskChanges onto the column set the gateway
// expects. Clearing fields is expressed with explicit nulls.
func changesPayload(changes domain.TaskChanges) map[string]interface{} {
	payload := make(map[string]interface{}, 4)
	if changes.Title != nil {
		payload["title"] = *changes.Title
	}
	if changes.Done != nil {
		payload["done"] = *changes.Done
	}
	if changes.AssigneeID != nil {
		if *changes.AssigneeID == "" {
			payload["assignee_id"] = nil
		} else {
			payload["assignee_id"] = *changes.AssigneeID
		}
	}
	if changes.DueAt != nil {
		if changes.DueAt.IsZero() {
			payload["due_at"] = nil
		} else {
			payload["due_at"] = changes.DueAt.Format(time.RFC3339)
		}
	}
	return payload
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
