package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/client/internal/infrastructure/monitor"
	"github.com/taskboard/client/pkg/httpcontext"
)

// HealthHandler reports gateway connectivity.
type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check returns the connectivity status. The client stays up while the
// gateway is unreachable; 503 here tells the UI to show the offline
// indicator.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	code := http.StatusOK
	if !status.Gateway {
		code = http.StatusServiceUnavailable
	}
	h.respondSuccess(ctx, code, status)
}
