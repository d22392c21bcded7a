package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/client/api/transport"
	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
	"github.com/taskboard/client/internal/services"
	"github.com/taskboard/client/pkg/httpcontext"
	profileUC "github.com/taskboard/client/usecase/profile"
	taskUC "github.com/taskboard/client/usecase/task"
	"github.com/taskboard/client/usecase/view"
)

// TaskHandler exposes the board and task mutations. Every mutation
// outcome lands in the status area: success clears it, failure
// replaces it.
type TaskHandler struct {
	baseHandler
	engine     *taskUC.Engine
	projection *view.Projection
	directory  *profileUC.Directory
	identity   gateway.Identity
	status     *services.StatusArea
}

func NewTaskHandler(
	engine *taskUC.Engine,
	projection *view.Projection,
	directory *profileUC.Directory,
	identity gateway.Identity,
	status *services.StatusArea,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		projection:  projection,
		directory:   directory,
		identity:    identity,
		status:      status,
	}
}

// GetBoard returns the filtered, display-ready task list.
func (h *TaskHandler) GetBoard(ctx *fasthttp.RequestCtx) {
	filter, err := domain.ParseFilter(string(ctx.QueryArgs().Peek("filter")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	tasks := h.projection.Project(h.engine.Tasks(), filter, h.identity.UserID())
	items := make([]transport.BoardItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, transport.BoardItem{
			Task:          t,
			CreatorLabel:  h.directory.Label(t.CreatorID),
			AssigneeLabel: h.directory.Label(t.AssigneeID),
		})
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// CreateTask inserts a new task optimistically.
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	draft := taskUC.Draft{
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
	}
	if req.DueAt != "" {
		due, err := time.Parse(time.RFC3339, req.DueAt)
		if err != nil {
			h.badRequest(ctx, "invalid due timestamp")
			return
		}
		draft.DueAt = &due
	}
	if req.Attachment != nil {
		content, err := base64.StdEncoding.DecodeString(req.Attachment.Content)
		if err != nil {
			h.badRequest(ctx, "invalid attachment encoding")
			return
		}
		draft.Attachment = &taskUC.Attachment{
			Filename:    req.Attachment.Filename,
			ContentType: req.Attachment.ContentType,
			Content:     content,
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Insert(stdCtx, h.identity.UserID(), draft); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusCreated, nil)
}

// UpdateTask applies a partial change to one task.
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.badRequest(ctx, "missing task id")
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	changes := domain.TaskChanges{
		Title:      req.Title,
		Done:       req.Done,
		AssigneeID: req.AssigneeID,
	}
	if req.DueAt != nil {
		if *req.DueAt == "" {
			changes.DueAt = &time.Time{}
		} else {
			due, err := time.Parse(time.RFC3339, *req.DueAt)
			if err != nil {
				h.badRequest(ctx, "invalid due timestamp")
				return
			}
			changes.DueAt = &due
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Update(stdCtx, id, changes); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// ToggleTask flips a task's completion flag.
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.badRequest(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Toggle(stdCtx, id); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// DeleteTask removes one task.
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.badRequest(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Delete(stdCtx, id); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// ClearCompleted removes every completed task in one batch.
func (h *TaskHandler) ClearCompleted(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.ClearCompleted(stdCtx); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusOK, nil)
}
