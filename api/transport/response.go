package transport

import (
	"encoding/json"

	"github.com/taskboard/client/domain"
)

// Envelope is the standard response wrapper for both success and error
// payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}) Envelope {
	return Envelope{Status: "success", Data: data}
}

// NewError returns an error envelope.
func NewError(code string, err interface{}) Envelope {
	return Envelope{Status: "error", Code: code, Error: err}
}

// String returns the JSON representation (best-effort) for logging.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// BoardItem is a task with resolved display labels.
type BoardItem struct {
	domain.Task
	CreatorLabel  string `json:"creator_label,omitempty"`
	AssigneeLabel string `json:"assignee_label,omitempty"`
}
