package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskboard/client/api/handler"
	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
	pgGateway "github.com/taskboard/client/gateway/postgres"
	"github.com/taskboard/client/gateway/realtime"
	redisGateway "github.com/taskboard/client/gateway/redis"
	"github.com/taskboard/client/gateway/rest"
	"github.com/taskboard/client/internal/cache"
	"github.com/taskboard/client/internal/config"
	"github.com/taskboard/client/internal/infrastructure/monitor"
	pgInfra "github.com/taskboard/client/internal/infrastructure/postgres"
	redisInfra "github.com/taskboard/client/internal/infrastructure/redis"
	"github.com/taskboard/client/internal/infrastructure/snapshot"
	"github.com/taskboard/client/internal/middleware"
	"github.com/taskboard/client/internal/router"
	"github.com/taskboard/client/internal/services"
	"github.com/taskboard/client/internal/services/lifecycle"
	"github.com/taskboard/client/pkg/httpcontext"
	"github.com/taskboard/client/pkg/logger"
	commentUC "github.com/taskboard/client/usecase/comment"
	profileUC "github.com/taskboard/client/usecase/profile"
	taskUC "github.com/taskboard/client/usecase/task"
	"github.com/taskboard/client/usecase/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	restClient, err := rest.NewClient(rest.Config{
		URL:         cfg.Gateway.URL,
		AnonKey:     cfg.Gateway.AnonKey,
		AccessToken: cfg.Gateway.AccessToken,
		Bucket:      cfg.Gateway.Bucket,
		Timeout:     cfg.Gateway.RequestTimeout,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("gateway client failed", zap.Error(err))
	}

	identity, err := rest.NewIdentity(restClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("no session identity", zap.Error(err))
	}

	var pool *pgxpool.Pool
	ensurePool := func() *pgxpool.Pool {
		if pool != nil {
			return pool
		}
		p, err := pgInfra.NewPool(appCtx, cfg.Gateway.DatabaseURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			p.Close()
			return nil
		})
		pool = p
		return p
	}

	var (
		taskGW    gateway.TaskGateway
		commentGW gateway.CommentGateway
		profileGW gateway.ProfileGateway
	)
	switch cfg.Gateway.Backend {
	case config.BackendPostgres:
		p := ensurePool()
		taskGW = pgGateway.NewTaskGateway(p)
		commentGW = pgGateway.NewCommentGateway(p)
		profileGW = pgGateway.NewProfileGateway(p)
	default:
		taskGW = rest.NewTaskGateway(restClient)
		commentGW = rest.NewCommentGateway(restClient)
		profileGW = rest.NewProfileGateway(restClient)
	}
	// Object storage always goes through the hosted API.
	objects := rest.NewObjectStore(restClient)

	var feed gateway.FeedGateway
	switch cfg.Feed.Backend {
	case config.FeedPostgres:
		feed = pgGateway.NewFeed(ensurePool(), zapLogger)
	case config.FeedRedis:
		redisClient, err := redisInfra.NewClient(redisInfra.Config{
			URL:      cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		feed = redisGateway.NewFeed(redisClient, zapLogger)
	default:
		feed, err = realtime.New(realtime.Config{
			URL:               cfg.Gateway.URL,
			AnonKey:           cfg.Gateway.AnonKey,
			AccessToken:       cfg.Gateway.AccessToken,
			HeartbeatInterval: cfg.Feed.HeartbeatInterval,
			BufferSize:        cfg.Feed.BufferSize,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("realtime feed setup failed", zap.Error(err))
		}
	}

	mon := monitor.New(restClient, cfg.Feed.MonitorInterval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var snapSaver taskUC.SnapshotStore
	var snapStore *snapshot.Store
	if cfg.Snapshot.Enabled {
		snapStore, err = snapshot.Open(cfg.Snapshot.Path)
		if err != nil {
			zapLogger.Warn("snapshot store unavailable", zap.Error(err))
		} else {
			snapSaver = snapStore
			manager.Register("snapshot", func(ctx context.Context) error {
				return snapStore.Close()
			})
		}
	}

	toasts := services.NewToasts(32, zapLogger)
	statusArea := services.NewStatusArea()

	taskCol := cache.New[domain.Task]()
	commentCol := cache.New[domain.Comment]()

	taskEngine := taskUC.New(taskCol, taskGW, objects, toasts, snapSaver, zapLogger)
	commentEngine := commentUC.New(commentCol, commentGW, toasts, zapLogger)
	directory := profileUC.New(profileGW, zapLogger)
	projection := view.New()

	if snapStore != nil {
		if warm, err := snapStore.LoadTasks(); err == nil {
			taskEngine.WarmStart(warm)
		}
	}

	loadCtx, loadCancel := context.WithTimeout(appCtx, cfg.Gateway.RequestTimeout)
	if err := taskEngine.Reload(loadCtx); err != nil {
		statusArea.SetError(err)
		zapLogger.Error("initial task load failed", zap.Error(err))
	}
	if err := directory.Reload(loadCtx); err != nil {
		zapLogger.Warn("profile directory load failed", zap.Error(err))
	}
	loadCancel()

	reconciler := services.NewReconciler(feed, taskEngine, commentEngine, mon, zapLogger, services.ReconcilerConfig{
		ResyncInterval: cfg.Feed.ResyncInterval,
		ReloadTimeout:  cfg.Gateway.RequestTimeout,
	})
	if err := reconciler.Start(appCtx); err != nil {
		zapLogger.Error("reconciler start failed", zap.Error(err))
	}
	manager.Register("reconciler", func(ctx context.Context) error {
		reconciler.Stop(ctx)
		return nil
	})

	signOut := func(ctx context.Context) error {
		reconciler.Stop(ctx)
		taskCol.Reset()
		commentCol.Reset()
		return identity.SignOut(ctx)
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:    apiHandler.NewTaskHandler(taskEngine, projection, directory, identity, statusArea, ctxAdapter, zapLogger),
		Comment: apiHandler.NewCommentHandler(commentEngine, reconciler, identity, statusArea, ctxAdapter, zapLogger),
		Session: apiHandler.NewSessionHandler(identity, signOut, ctxAdapter, zapLogger),
		Notify:  apiHandler.NewNotifyHandler(toasts, statusArea, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, middleware.AccessLog(zapLogger))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("board available", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
