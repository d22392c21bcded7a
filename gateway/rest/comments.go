package rest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type commentGateway struct {
	client *Client
}

// NewCommentGateway returns the PostgREST-backed comment table gateway.
func NewCommentGateway(client *Client) gateway.CommentGateway {
	return &commentGateway{client: client}
}

type commentRow struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (g *commentGateway) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	if taskID == "" {
		return nil, domain.ErrInvalidPayload
	}
	var rows []commentRow
	query := "select=*&" + eqParam("task_id", taskID) + "&order=created_at.desc"
	if err := g.client.do(ctx, fasthttp.MethodGet, "/rest/v1/comments", query, nil, "", &rows); err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, domain.Comment(row))
	}
	return comments, nil
}

func (g *commentGateway) Insert(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	body, err := json.Marshal(commentRow(*comment))
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comment encode failed", err)
	}
	return g.client.do(ctx, fasthttp.MethodPost, "/rest/v1/comments", "", body, "", nil)
}
