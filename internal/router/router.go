package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskboard/client/api/handler"
)

type Handlers struct {
	Task    *apiHandler.TaskHandler
	Comment *apiHandler.CommentHandler
	Session *apiHandler.SessionHandler
	Notify  *apiHandler.NotifyHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, accessLog func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	wrap := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		if accessLog != nil {
			return accessLog(h)
		}
		return h
	}

	r.GET("/health", wrap(handlers.Health.Check))

	r.GET("/api/v1/board", wrap(handlers.Task.GetBoard))
	r.POST("/api/v1/tasks", wrap(handlers.Task.CreateTask))
	r.PATCH("/api/v1/tasks/{id}", wrap(handlers.Task.UpdateTask))
	r.POST("/api/v1/tasks/{id}/toggle", wrap(handlers.Task.ToggleTask))
	r.DELETE("/api/v1/tasks/{id}", wrap(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/clear-completed", wrap(handlers.Task.ClearCompleted))

	r.PUT("/api/v1/comments/target", wrap(handlers.Comment.OpenTarget))
	r.DELETE("/api/v1/comments/target", wrap(handlers.Comment.CloseTarget))
	r.GET("/api/v1/comments", wrap(handlers.Comment.GetComments))
	r.POST("/api/v1/comments", wrap(handlers.Comment.AddComment))

	r.GET("/api/v1/session", wrap(handlers.Session.GetSession))
	r.POST("/api/v1/session/signout", wrap(handlers.Session.SignOut))

	r.GET("/api/v1/notifications", wrap(handlers.Notify.Poll))

	return r
}
