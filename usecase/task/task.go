// Package task is the optimistic mutation engine for the task
// collection. Every user-initiated write lands in the local cache
// before the remote call resolves; reconciliation on failure is an
// exact rollback for updates and deletes, and a full resync for
// inserts, whose upload side effect cannot be rolled back.
package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
	"github.com/taskboard/client/internal/cache"
	"github.com/taskboard/client/usecase"
)

// SnapshotStore persists the last server-confirmed collection for warm
// starts. Optional; save failures are logged and ignored.
type SnapshotStore interface {
	SaveTasks(tasks []domain.Task) error
}

// Engine applies optimistic task mutations and reconciles them against
// the remote gateway.
type Engine struct {
	cache    *cache.Collection[domain.Task]
	tasks    gateway.TaskGateway
	objects  gateway.ObjectStore
	notifier usecase.Notifier
	snapshot SnapshotStore
	logger   *zap.Logger
}

// New builds the engine. Notifier and snapshot store may be nil.
func New(
	col *cache.Collection[domain.Task],
	tasks gateway.TaskGateway,
	objects gateway.ObjectStore,
	notifier usecase.Notifier,
	snapshot SnapshotStore,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cache:    col,
		tasks:    tasks,
		objects:  objects,
		notifier: notifier,
		snapshot: snapshot,
		logger:   logger,
	}
}

// Draft is the user input for a new task.
type Draft struct {
	Title      string
	AssigneeID string
	DueAt      *time.Time
	Attachment *Attachment
}

// Attachment is an in-memory file to upload before the row insert.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Tasks returns the current collection in recency order.
func (e *Engine) Tasks() []domain.Task {
	return e.cache.Items()
}

// Reload replaces the collection with the gateway's current state. On
// read failure the collection is reset to empty rather than left
// stale, and the error is returned for the UI to surface.
func (e *Engine) Reload(ctx context.Context) error {
	items, err := e.tasks.List(ctx)
	if err != nil {
		e.cache.Reset()
		return domain.WrapError(domain.ErrCodeUnavailable, "task reload failed", err)
	}
	e.cache.Replace(items)
	e.saveSnapshot(items)
	return nil
}

// Insert creates a task optimistically. A whitespace-only title is
// rejected silently before any mutation or remote call. When the draft
// carries an attachment the upload happens first; its failure aborts
// the insert entirely. A remote insert failure triggers a full resync
// because the temporary identifier never matches the server-assigned
// row and the upload may already have succeeded.
func (e *Engine) Insert(ctx context.Context, creatorID string, draft Draft) error {
	title, ok := domain.NormalizeText(draft.Title)
	if !ok {
		e.logger.Debug("insert skipped, empty title")
		return nil
	}

	task := domain.Task{
		ID:         uuid.NewString(),
		CreatorID:  creatorID,
		AssigneeID: draft.AssigneeID,
		Title:      title,
		CreatedAt:  time.Now().UTC(),
	}
	if draft.DueAt != nil && !draft.DueAt.IsZero() {
		due := *draft.DueAt
		task.DueAt = &due
	}

	if att := draft.Attachment; att != nil {
		url, err := e.objects.Upload(ctx,
			gateway.AttachmentPath(creatorID, att.Filename), att.Content, att.ContentType)
		if err != nil {
			return domain.WrapError(domain.ErrCodeUnavailable, "attachment upload failed", err)
		}
		task.AttachmentURL = url
	}

	e.cache.Prepend(task)

	if err := e.tasks.Insert(ctx, &task); err != nil {
		e.logger.Error("task insert rejected, resyncing", zap.String("task_id", task.ID), zap.Error(err))
		if rerr := e.Reload(ctx); rerr != nil {
			e.logger.Error("resync after failed insert also failed", zap.Error(rerr))
		}
		return domain.WrapError(domain.ErrCodeUnavailable, "task insert failed", err)
	}

	e.notify(ctx, "task created")
	return nil
}

// Update applies a partial change optimistically and rolls the whole
// collection back to its pre-mutation snapshot if the gateway rejects
// the write. A whitespace-only title is rejected silently before any
// mutation or remote call, the same policy as Insert.
func (e *Engine) Update(ctx context.Context, id string, changes domain.TaskChanges) error {
	if changes.Title != nil {
		title, ok := domain.NormalizeText(*changes.Title)
		if !ok {
			e.logger.Debug("update skipped, empty title", zap.String("task_id", id))
			return nil
		}
		changes.Title = &title
	}
	if changes.IsZero() {
		return nil
	}
	snapshot := e.cache.Snapshot()
	if ok := e.cache.Apply(id, func(t *domain.Task) { changes.ApplyTo(t) }); !ok {
		return domain.ErrTaskNotFound
	}

	if err := e.tasks.Update(ctx, id, changes); err != nil {
		e.cache.Restore(snapshot)
		return domain.WrapError(domain.ErrCodeUnavailable, "task update failed", err)
	}

	e.notify(ctx, "task updated")
	return nil
}

// Toggle flips the completion flag.
func (e *Engine) Toggle(ctx context.Context, id string) error {
	current, ok := e.cache.Get(id)
	if !ok {
		return domain.ErrTaskNotFound
	}
	done := !current.Done
	return e.Update(ctx, id, domain.TaskChanges{Done: &done})
}

// Assign sets or clears the assignee.
func (e *Engine) Assign(ctx context.Context, id, assigneeID string) error {
	return e.Update(ctx, id, domain.TaskChanges{AssigneeID: &assigneeID})
}

// SetDue sets or clears the due timestamp; nil clears it.
func (e *Engine) SetDue(ctx context.Context, id string, due *time.Time) error {
	if due == nil {
		due = &time.Time{}
	}
	return e.Update(ctx, id, domain.TaskChanges{DueAt: due})
}

// Delete removes a task optimistically with exact rollback on failure.
func (e *Engine) Delete(ctx context.Context, id string) error {
	snapshot := e.cache.Snapshot()
	if removed := e.cache.Remove(id); removed == 0 {
		return domain.ErrTaskNotFound
	}

	if err := e.tasks.Delete(ctx, id); err != nil {
		e.cache.Restore(snapshot)
		return domain.WrapError(domain.ErrCodeUnavailable, "task delete failed", err)
	}

	e.notify(ctx, "task deleted")
	return nil
}

// ClearCompleted removes every completed task optimistically and issues
// one batch delete keyed by the matched identifiers. When nothing
// matches, no remote call is made.
func (e *Engine) ClearCompleted(ctx context.Context) error {
	snapshot := e.cache.Snapshot()
	ids := e.cache.RemoveWhere(func(t domain.Task) bool { return t.Done })
	if len(ids) == 0 {
		return nil
	}

	if err := e.tasks.DeleteMany(ctx, ids); err != nil {
		e.cache.Restore(snapshot)
		return domain.WrapError(domain.ErrCodeUnavailable, "clear completed failed", err)
	}

	e.notify(ctx, "completed tasks cleared")
	return nil
}

// WarmStart pre-populates the cache from a local snapshot so the board
// renders before the first reload. The data is treated as stale.
func (e *Engine) WarmStart(tasks []domain.Task) {
	if len(tasks) == 0 || e.cache.Len() > 0 {
		return
	}
	e.cache.Replace(tasks)
}

func (e *Engine) notify(ctx context.Context, text string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, text); err != nil {
		e.logger.Debug("notification dropped", zap.Error(err))
	}
}

func (e *Engine) saveSnapshot(tasks []domain.Task) {
	if e.snapshot == nil {
		return
	}
	if err := e.snapshot.SaveTasks(tasks); err != nil {
		e.logger.Warn("task snapshot save failed", zap.Error(err))
	}
}
