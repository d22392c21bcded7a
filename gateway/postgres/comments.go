package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type commentGateway struct {
	pool *pgxpool.Pool
}

// NewCommentGateway returns a pgx-backed implementation of
// CommentGateway.
func NewCommentGateway(pool *pgxpool.Pool) gateway.CommentGateway {
	return &commentGateway{pool: pool}
}

func (g *commentGateway) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	if taskID == "" {
		return nil, domain.ErrInvalidPayload
	}
	const query = `
	SELECT id, task_id, author_id, body, created_at
	FROM comments
	WHERE task_id = $1
	ORDER BY created_at DESC
	`
	rows, err := g.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "comment list failed", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "comment scan failed", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (g *commentGateway) Insert(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO comments (id, task_id, author_id, body, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	_, err := g.pool.Exec(ctx, query,
		comment.ID,
		comment.TaskID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "comment insert failed", err)
	}
	return nil
}
