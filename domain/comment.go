package domain

import "time"

// Comment is an append-only note under a task. The parent task
// reference is immutable; no update or delete exists for comments.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) EntityID() string { return c.ID }
