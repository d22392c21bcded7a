package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/client/api/transport"
	"github.com/taskboard/client/gateway"
	"github.com/taskboard/client/internal/services"
	"github.com/taskboard/client/pkg/httpcontext"
	commentUC "github.com/taskboard/client/usecase/comment"
)

// CommentHandler drives the comment drawer: one open target at a time,
// with its own change-feed subscription managed by the reconciler.
type CommentHandler struct {
	baseHandler
	engine     *commentUC.Engine
	reconciler *services.Reconciler
	identity   gateway.Identity
	status     *services.StatusArea
}

func NewCommentHandler(
	engine *commentUC.Engine,
	reconciler *services.Reconciler,
	identity gateway.Identity,
	status *services.StatusArea,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *CommentHandler {
	return &CommentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		reconciler:  reconciler,
		identity:    identity,
		status:      status,
	}
}

// OpenTarget switches the comment view to the requested task.
func (h *CommentHandler) OpenTarget(ctx *fasthttp.RequestCtx) {
	var req transport.CommentTargetRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.TaskID == "" {
		h.badRequest(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.reconciler.OpenComments(stdCtx, req.TaskID); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// CloseTarget tears down the comment view and its subscription.
func (h *CommentHandler) CloseTarget(ctx *fasthttp.RequestCtx) {
	h.reconciler.CloseComments()
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// GetComments lists the open target's comments in recency order.
func (h *CommentHandler) GetComments(ctx *fasthttp.RequestCtx) {
	payload := map[string]interface{}{
		"task_id":  h.engine.TaskID(),
		"comments": h.engine.Comments(),
	}
	h.respondSuccess(ctx, http.StatusOK, payload)
}

// AddComment appends a comment to the open target.
func (h *CommentHandler) AddComment(ctx *fasthttp.RequestCtx) {
	var req transport.CommentCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.engine.Add(stdCtx, h.identity.UserID(), req.Body); err != nil {
		h.status.SetError(err)
		h.respondError(ctx, err)
		return
	}
	h.status.Clear()
	h.respondSuccess(ctx, http.StatusCreated, nil)
}
