package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

// Feed delivers change events over Postgres LISTEN/NOTIFY. The platform
// notifies "<table>_changes" with the action name as payload; the
// payload is treated as a hint only.
type Feed struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewFeed builds the LISTEN/NOTIFY feed gateway.
func NewFeed(pool *pgxpool.Pool, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{pool: pool, logger: logger}
}

// Subscribe holds a dedicated connection listening on the table's
// notification channel. The column filter is accepted for interface
// parity but not pushed down; narrowing happens at reload time.
func (f *Feed) Subscribe(ctx context.Context, table string, _ *gateway.EqFilter) (gateway.Subscription, error) {
	if table == "" {
		return nil, domain.ErrInvalidPayload
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &subscription{
		feed:    f,
		table:   table,
		channel: table + "_changes",
		events:  make(chan gateway.Event, 16),
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  f.logger.With(zap.String("table", table)),
	}
	go s.run(subCtx)
	return s, nil
}

type subscription struct {
	feed    *Feed
	table   string
	channel string
	events  chan gateway.Event
	cancel  context.CancelFunc
	done    chan struct{}
	logger  *zap.Logger

	closeOnce sync.Once
}

func (s *subscription) Events() <-chan gateway.Event { return s.events }

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		close(s.events)
	})
	return nil
}

func (s *subscription) run(ctx context.Context) {
	defer close(s.done)

	for ctx.Err() == nil {
		if err := s.listen(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("notification listener lost, retrying", zap.Error(err))
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
		}
	}
}

func (s *subscription) listen(ctx context.Context) error {
	conn, err := s.feed.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+s.channel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		action := gateway.Action(notification.Payload)
		switch action {
		case gateway.ActionInsert, gateway.ActionUpdate, gateway.ActionDelete:
		default:
			action = gateway.ActionUnknown
		}
		select {
		case s.events <- gateway.Event{Table: s.table, Action: action}:
		default:
			s.logger.Debug("feed consumer lagging, event dropped")
		}
	}
}
