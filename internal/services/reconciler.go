package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskboard/client/gateway"
)

// Reloader is the reload side of a mutation engine.
type Reloader interface {
	Reload(ctx context.Context) error
}

// CommentView is the comment engine surface the reconciler drives.
type CommentView interface {
	Open(ctx context.Context, taskID string) error
	Close()
	Reload(ctx context.Context) error
	TaskID() string
}

// ConnectionHealth abstracts the connectivity monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// ReconcilerConfig controls reload timeouts and the periodic resync
// safety net.
type ReconcilerConfig struct {
	ResyncInterval time.Duration
	ReloadTimeout  time.Duration
}

// Reconciler bridges the change feed to collection reloads. Any event
// on a subscribed table, regardless of type or origin, triggers exactly
// one unconditional reload of that collection; local optimistic state
// is always superseded by server truth. It owns the task-table
// subscription for the whole session and at most one comment
// subscription while a comment view is open.
type Reconciler struct {
	feed     gateway.FeedGateway
	tasks    Reloader
	comments CommentView
	health   ConnectionHealth
	logger   *zap.Logger
	cfg      ReconcilerConfig
	cron     *cron.Cron

	mu         sync.Mutex
	taskSub    gateway.Subscription
	commentSub gateway.Subscription
	started    bool
}

// NewReconciler builds the reconciler. Health may be nil.
func NewReconciler(
	feed gateway.FeedGateway,
	tasks Reloader,
	comments CommentView,
	health ConnectionHealth,
	logger *zap.Logger,
	cfg ReconcilerConfig,
) *Reconciler {
	if cfg.ResyncInterval <= 0 {
		cfg.ResyncInterval = 5 * time.Minute
	}
	if cfg.ReloadTimeout <= 0 {
		cfg.ReloadTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		feed:     feed,
		tasks:    tasks,
		comments: comments,
		health:   health,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start establishes the task-table subscription and the periodic
// resync. Call once the user identity is known.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	sub, err := r.feed.Subscribe(ctx, gateway.TableTasks, nil)
	if err != nil {
		return err
	}
	r.taskSub = sub
	go r.consume(sub, "tasks", r.tasks.Reload)

	schedule := fmt.Sprintf("@every %s", r.cfg.ResyncInterval)
	if _, err := r.cron.AddFunc(schedule, r.resync); err != nil {
		r.logger.Error("resync schedule rejected",
			zap.String("schedule", schedule), zap.Error(err))
	}
	r.cron.Start()

	r.started = true
	r.logger.Info("reconciler started")
	return nil
}

// OpenComments switches the comment view to the given task: the
// previous comment subscription, if any, is torn down first, so at most
// one is ever active.
func (r *Reconciler) OpenComments(ctx context.Context, taskID string) error {
	r.closeCommentSub()

	if err := r.comments.Open(ctx, taskID); err != nil {
		return err
	}

	sub, err := r.feed.Subscribe(ctx, gateway.TableComments,
		&gateway.EqFilter{Column: "task_id", Value: taskID})
	if err != nil {
		// The view stays open without its feed; the cron resync
		// still refreshes it.
		r.logger.Error("comment feed subscription failed", zap.String("task_id", taskID), zap.Error(err))
		return nil
	}

	r.mu.Lock()
	r.commentSub = sub
	r.mu.Unlock()
	go r.consume(sub, "comments", r.comments.Reload)

	return nil
}

// CloseComments tears down the comment view and its subscription.
// In-flight remote calls are not cancelled; a stale response for a
// closed view is discarded by the comment engine.
func (r *Reconciler) CloseComments() {
	r.closeCommentSub()
	r.comments.Close()
}

// Stop tears everything down. Called on sign-out or shutdown.
func (r *Reconciler) Stop(ctx context.Context) {
	r.mu.Lock()
	taskSub := r.taskSub
	r.taskSub = nil
	r.started = false
	r.mu.Unlock()

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}

	if taskSub != nil {
		_ = taskSub.Close()
	}
	r.closeCommentSub()
	r.logger.Info("reconciler stopped")
}

// consume issues exactly one reload per received event. Reload errors
// are logged and swallowed; the next event or resync tries again.
func (r *Reconciler) consume(sub gateway.Subscription, name string, reload func(context.Context) error) {
	for ev := range sub.Events() {
		r.logger.Debug("change event received",
			zap.String("collection", name), zap.String("action", string(ev.Action)))
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ReloadTimeout)
		if err := reload(ctx); err != nil {
			r.logger.Error("feed-triggered reload failed",
				zap.String("collection", name), zap.Error(err))
		}
		cancel()
	}
}

// resync is the cron safety net for events missed across feed
// reconnects. Skipped while the gateway is unreachable.
func (r *Reconciler) resync() {
	if r.health != nil && !r.health.IsOnline() {
		r.logger.Debug("skipping resync (offline)")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ReloadTimeout)
	defer cancel()

	if err := r.tasks.Reload(ctx); err != nil {
		r.logger.Warn("periodic task resync failed", zap.Error(err))
	}
	if r.comments.TaskID() != "" {
		if err := r.comments.Reload(ctx); err != nil {
			r.logger.Warn("periodic comment resync failed", zap.Error(err))
		}
	}
}

func (r *Reconciler) closeCommentSub() {
	r.mu.Lock()
	sub := r.commentSub
	r.commentSub = nil
	r.mu.Unlock()
	if sub != nil {
		_ = sub.Close()
	}
}
