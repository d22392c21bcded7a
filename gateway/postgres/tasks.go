// Package postgres implements the gateway interfaces over a direct
// connection to the platform's Postgres pool, for deployments that
// expose the database connection string alongside the hosted API.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type taskGateway struct {
	pool *pgxpool.Pool
}

// NewTaskGateway returns a pgx-backed implementation of TaskGateway.
func NewTaskGateway(pool *pgxpool.Pool) gateway.TaskGateway {
	return &taskGateway{pool: pool}
}

func (g *taskGateway) List(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT id, creator_id, assignee_id, title, done, attachment_url, due_at, created_at
	FROM tasks
	ORDER BY created_at DESC
	`
	rows, err := g.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "task list failed", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (g *taskGateway) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO tasks (id, creator_id, assignee_id, title, done, attachment_url, due_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := g.pool.Exec(ctx, query,
		task.ID,
		task.CreatorID,
		nullString(task.AssigneeID),
		task.Title,
		task.Done,
		nullString(task.AttachmentURL),
		task.DueAt,
		task.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "task insert failed", err)
	}
	return nil
}

func (g *taskGateway) Update(ctx context.Context, id string, changes domain.TaskChanges) error {
	if id == "" || changes.IsZero() {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE tasks
	SET title = COALESCE($2, title),
		done = COALESCE($3, done),
		assignee_id = CASE WHEN $4 THEN $5 ELSE assignee_id END,
		due_at = CASE WHEN $6 THEN $7 ELSE due_at END
	WHERE id = $1
	`
	var assignee interface{}
	if changes.AssigneeID != nil && *changes.AssigneeID != "" {
		assignee = *changes.AssigneeID
	}
	var due interface{}
	if changes.DueAt != nil && !changes.DueAt.IsZero() {
		due = *changes.DueAt
	}
	tag, err := g.pool.Exec(ctx, query,
		id,
		changes.Title,
		changes.Done,
		changes.AssigneeID != nil,
		assignee,
		changes.DueAt != nil,
		due,
	)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "task update failed", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (g *taskGateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidPayload
	}
	tag, err := g.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "task delete failed", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (g *taskGateway) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := g.pool.Exec(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, ids)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "task batch delete failed", err)
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		assignee   *string
		attachment *string
		due        *time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.CreatorID,
		&assignee,
		&task.Title,
		&task.Done,
		&attachment,
		&due,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "task scan failed", err)
	}
	if assignee != nil {
		task.AssigneeID = *assignee
	}
	if attachment != nil {
		task.AttachmentURL = *attachment
	}
	task.DueAt = due
	return &task, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
