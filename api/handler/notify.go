package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/client/internal/services"
	"github.com/taskboard/client/pkg/httpcontext"
)

// NotifyHandler serves the transient UI feedback: queued toasts plus
// the single status message area.
type NotifyHandler struct {
	baseHandler
	toasts *services.Toasts
	status *services.StatusArea
}

func NewNotifyHandler(
	toasts *services.Toasts,
	status *services.StatusArea,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *NotifyHandler {
	return &NotifyHandler{
		baseHandler: newBaseHandler(adapter, logger),
		toasts:      toasts,
		status:      status,
	}
}

// Poll drains queued toasts and reports the current status message.
func (h *NotifyHandler) Poll(ctx *fasthttp.RequestCtx) {
	payload := map[string]interface{}{
		"toasts": h.toasts.Drain(),
	}
	if msg, ok := h.status.Current(); ok {
		payload["status"] = msg
	}
	h.respondSuccess(ctx, http.StatusOK, payload)
}
