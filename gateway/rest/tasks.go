package rest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type taskGateway struct {
	client *Client
}

// NewTaskGateway returns the PostgREST-backed task table gateway.
func NewTaskGateway(client *Client) gateway.TaskGateway {
	return &taskGateway{client: client}
}

// taskRow mirrors the remote column layout; nullable columns use
// pointers so explicit nulls round-trip.
type taskRow struct {
	ID            string     `json:"id"`
	CreatorID     string     `json:"creator_id"`
	AssigneeID    *string    `json:"assignee_id"`
	Title         string     `json:"title"`
	Done          bool       `json:"done"`
	AttachmentURL *string    `json:"attachment_url"`
	DueAt         *time.Time `json:"due_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (r taskRow) toDomain() domain.Task {
	return domain.Task{
		ID:            r.ID,
		CreatorID:     r.CreatorID,
		AssigneeID:    deref(r.AssigneeID),
		Title:         r.Title,
		Done:          r.Done,
		AttachmentURL: deref(r.AttachmentURL),
		DueAt:         r.DueAt,
		CreatedAt:     r.CreatedAt,
	}
}

func rowFromTask(t *domain.Task) taskRow {
	return taskRow{
		ID:            t.ID,
		CreatorID:     t.CreatorID,
		AssigneeID:    optional(t.AssigneeID),
		Title:         t.Title,
		Done:          t.Done,
		AttachmentURL: optional(t.AttachmentURL),
		DueAt:         t.DueAt,
		CreatedAt:     t.CreatedAt,
	}
}

func (g *taskGateway) List(ctx context.Context) ([]domain.Task, error) {
	var rows []taskRow
	query := "select=*&order=created_at.desc"
	if err := g.client.do(ctx, fasthttp.MethodGet, "/rest/v1/tasks", query, nil, "", &rows); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

func (g *taskGateway) Insert(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	body, err := json.Marshal(rowFromTask(task))
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "task encode failed", err)
	}
	return g.client.do(ctx, fasthttp.MethodPost, "/rest/v1/tasks", "", body, "", nil)
}

func (g *taskGateway) Update(ctx context.Context, id string, changes domain.TaskChanges) error {
	if id == "" || changes.IsZero() {
		return domain.ErrInvalidPayload
	}
	body, err := json.Marshal(changesPayload(changes))
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "changes encode failed", err)
	}
	return g.client.do(ctx, fasthttp.MethodPatch, "/rest/v1/tasks", eqParam("id", id), body, "", nil)
}

func (g *taskGateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidPayload
	}
	return g.client.do(ctx, fasthttp.MethodDelete, "/rest/v1/tasks", eqParam("id", id), nil, "", nil)
}

func (g *taskGateway) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return g.client.do(ctx, fasthttp.MethodDelete, "/rest/v1/tasks", inParam("id", ids), nil, "", nil)
}
