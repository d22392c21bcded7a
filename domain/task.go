package domain

import (
	"strings"
	"time"
)

// Task is a single board item. The creator is set once at insert time
// and never changes; everything else is mutable through TaskChanges.
type Task struct {
	ID            string     `json:"id"`
	CreatorID     string     `json:"creator_id"`
	AssigneeID    string     `json:"assignee_id,omitempty"`
	Title         string     `json:"title"`
	Done          bool       `json:"done"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (t Task) EntityID() string { return t.ID }

func (t Task) IsAssigned() bool { return t.AssigneeID != "" }

// TaskChanges describes a partial update. Nil fields are left untouched.
// An empty AssigneeID clears the assignee; a zero DueAt clears the due
// timestamp.
type TaskChanges struct {
	Title      *string    `json:"title,omitempty"`
	Done       *bool      `json:"done,omitempty"`
	AssigneeID *string    `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// IsZero reports whether the change set touches nothing.
func (c TaskChanges) IsZero() bool {
	return c.Title == nil && c.Done == nil && c.AssigneeID == nil && c.DueAt == nil
}

// ApplyTo mutates the task in place with the non-nil fields.
func (c TaskChanges) ApplyTo(t *Task) {
	if t == nil {
		return
	}
	if c.Title != nil {
		t.Title = strings.TrimSpace(*c.Title)
	}
	if c.Done != nil {
		t.Done = *c.Done
	}
	if c.AssigneeID != nil {
		t.AssigneeID = *c.AssigneeID
	}
	if c.DueAt != nil {
		if c.DueAt.IsZero() {
			t.DueAt = nil
		} else {
			due := *c.DueAt
			t.DueAt = &due
		}
	}
}

// NormalizeText trims surrounding whitespace and reports whether
// anything is left. Empty input is rejected before any mutation or
// remote call is attempted.
func NormalizeText(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	return trimmed, trimmed != ""
}
