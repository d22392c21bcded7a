// Package comment is the optimistic mutation engine for the comment
// view. Comments are scoped to one open task at a time and append-only
// from this client's perspective.
package comment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
	"github.com/taskboard/client/internal/cache"
	"github.com/taskboard/client/usecase"
)

// Engine tracks the open comment target and its cached comments.
type Engine struct {
	cache    *cache.Collection[domain.Comment]
	comments gateway.CommentGateway
	notifier usecase.Notifier
	logger   *zap.Logger

	mu     sync.Mutex
	taskID string
}

// New builds the engine. Notifier may be nil.
func New(
	col *cache.Collection[domain.Comment],
	comments gateway.CommentGateway,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cache:    col,
		comments: comments,
		notifier: notifier,
		logger:   logger,
	}
}

// TaskID returns the open comment target, or "" when no view is open.
func (e *Engine) TaskID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.taskID
}

// Comments returns the cached comments for the open target in recency
// order.
func (e *Engine) Comments() []domain.Comment {
	return e.cache.Items()
}

// Open switches the comment view to the given task and loads its
// comments. Opening replaces any previously open target.
func (e *Engine) Open(ctx context.Context, taskID string) error {
	if taskID == "" {
		return domain.ErrInvalidPayload
	}
	e.mu.Lock()
	e.taskID = taskID
	e.mu.Unlock()
	return e.Reload(ctx)
}

// Close drops the open target and its cached comments.
func (e *Engine) Close() {
	e.mu.Lock()
	e.taskID = ""
	e.mu.Unlock()
	e.cache.Reset()
}

// Reload replaces the cached comments with the gateway's current state
// for the open target. A reload after the view closed is a no-op. On
// read failure the collection is reset to empty and the error surfaced.
func (e *Engine) Reload(ctx context.Context) error {
	taskID := e.TaskID()
	if taskID == "" {
		return nil
	}
	items, err := e.comments.ListByTask(ctx, taskID)
	// The target may have changed while the list call was in flight;
	// a stale response for a closed or switched view is discarded,
	// whether it succeeded or failed.
	if e.TaskID() != taskID {
		return nil
	}
	if err != nil {
		e.cache.Reset()
		return domain.WrapError(domain.ErrCodeUnavailable, "comment reload failed", err)
	}
	e.cache.Replace(items)
	return nil
}

// Add appends a comment optimistically. Whitespace-only bodies are
// rejected silently before any mutation or remote call. A remote
// failure triggers a resync of the open view, matching the insert
// semantics of the task engine.
func (e *Engine) Add(ctx context.Context, authorID, body string) error {
	taskID := e.TaskID()
	if taskID == "" {
		return domain.ErrNoCommentTarget
	}
	text, ok := domain.NormalizeText(body)
	if !ok {
		e.logger.Debug("comment skipped, empty body")
		return nil
	}

	comment := domain.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Body:      text,
		CreatedAt: time.Now().UTC(),
	}
	e.cache.Prepend(comment)

	if err := e.comments.Insert(ctx, &comment); err != nil {
		e.logger.Error("comment insert rejected, resyncing", zap.String("task_id", taskID), zap.Error(err))
		if rerr := e.Reload(ctx); rerr != nil {
			e.logger.Error("resync after failed comment insert also failed", zap.Error(rerr))
		}
		return domain.WrapError(domain.ErrCodeUnavailable, "comment insert failed", err)
	}

	e.notify(ctx, "comment added")
	return nil
}

func (e *Engine) notify(ctx context.Context, text string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, text); err != nil {
		e.logger.Debug("notification dropped", zap.Error(err))
	}
}
