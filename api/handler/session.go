package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/client/gateway"
	"github.com/taskboard/client/pkg/httpcontext"
)

// SignOutFunc tears down the session: reconciler, subscriptions,
// caches, then the platform-side sign-out.
type SignOutFunc func(ctx context.Context) error

// SessionHandler exposes the current identity and sign-out.
type SessionHandler struct {
	baseHandler
	identity gateway.Identity
	signOut  SignOutFunc
}

func NewSessionHandler(
	identity gateway.Identity,
	signOut SignOutFunc,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		identity:    identity,
		signOut:     signOut,
	}
}

// GetSession returns the signed-in user.
func (h *SessionHandler) GetSession(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]string{
		"user_id": h.identity.UserID(),
		"email":   h.identity.Email(),
	})
}

// SignOut ends the session. The local server keeps running; the UI
// shows the signed-out state until restart with fresh credentials.
func (h *SessionHandler) SignOut(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.signOut(stdCtx); err != nil {
		h.logger.Warn("sign-out cleanup failed", zap.Error(err))
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
