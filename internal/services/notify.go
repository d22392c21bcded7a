package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/usecase"
)

// Toast is one transient acknowledgment shown after a successful
// mutation.
type Toast struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Toasts is a bounded in-memory notification feed the UI drains on
// poll. Dispatch is best-effort: a full feed rejects the toast and the
// caller swallows the error.
type Toasts struct {
	ch     chan Toast
	logger *zap.Logger
}

// NewToasts builds the feed with the given capacity.
func NewToasts(capacity int, logger *zap.Logger) *Toasts {
	if capacity <= 0 {
		capacity = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toasts{
		ch:     make(chan Toast, capacity),
		logger: logger,
	}
}

// Notify queues a toast without blocking.
func (t *Toasts) Notify(_ context.Context, text string) error {
	select {
	case t.ch <- Toast{Text: text, At: time.Now()}:
		return nil
	default:
		return domain.NewError(domain.ErrCodeUnavailable, "notification feed full")
	}
}

// Drain returns every queued toast without blocking.
func (t *Toasts) Drain() []Toast {
	var out []Toast
	for {
		select {
		case toast := <-t.ch:
			out = append(out, toast)
		default:
			return out
		}
	}
}

var _ usecase.Notifier = (*Toasts)(nil)

// StatusMessage is the content of the single transient message area.
type StatusMessage struct {
	Text string    `json:"text"`
	Code string    `json:"code"`
	At   time.Time `json:"at"`
}

// StatusArea holds the latest operation outcome: a new failure replaces
// the previous message, a success clears it.
type StatusArea struct {
	mu  sync.Mutex
	msg *StatusMessage
}

// NewStatusArea returns an empty message area.
func NewStatusArea() *StatusArea {
	return &StatusArea{}
}

// SetError records a failure, overwriting whatever was shown.
func (s *StatusArea) SetError(err error) {
	if err == nil {
		return
	}
	code := string(domain.ErrCodeInternal)
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		code = string(dErr.Code)
	}
	s.mu.Lock()
	s.msg = &StatusMessage{Text: err.Error(), Code: code, At: time.Now()}
	s.mu.Unlock()
}

// Clear empties the message area after a successful operation.
func (s *StatusArea) Clear() {
	s.mu.Lock()
	s.msg = nil
	s.mu.Unlock()
}

// Current returns the displayed message, if any.
func (s *StatusArea) Current() (StatusMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.msg == nil {
		return StatusMessage{}, false
	}
	return *s.msg, true
}
