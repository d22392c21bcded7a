package transport

// TaskCreateRequest is the board's new-task form. DueAt is RFC3339;
// the attachment, when present, rides along base64-encoded so the
// local surface stays JSON.
type TaskCreateRequest struct {
	Title      string             `json:"title"`
	AssigneeID string             `json:"assignee_id"`
	DueAt      string             `json:"due_at"`
	Attachment *AttachmentRequest `json:"attachment"`
}

// AttachmentRequest carries a file to upload before the task insert.
type AttachmentRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// TaskUpdateRequest is a partial update; absent fields are untouched.
// An empty DueAt string clears the due timestamp, an empty AssigneeID
// clears the assignee.
type TaskUpdateRequest struct {
	Title      *string `json:"title"`
	Done       *bool   `json:"done"`
	AssigneeID *string `json:"assignee_id"`
	DueAt      *string `json:"due_at"`
}

// CommentTargetRequest opens the comment view for one task.
type CommentTargetRequest struct {
	TaskID string `json:"task_id"`
}

// CommentCreateRequest appends a comment to the open task.
type CommentCreateRequest struct {
	Body string `json:"body"`
}
