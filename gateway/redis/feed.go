// Package redis implements the change-feed gateway over Redis pub/sub,
// for deployments where the platform fans row changes out on
// "changes:<table>" channels with the action name as the message body.
package redis

import (
	"context"
	"sync"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

// Feed implements gateway.FeedGateway over Redis pub/sub.
type Feed struct {
	client *redislib.Client
	logger *zap.Logger
}

// NewFeed builds the pub/sub feed gateway.
func NewFeed(client *redislib.Client, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{client: client, logger: logger}
}

// Subscribe listens on the table's change channel. The column filter is
// accepted for interface parity but not pushed down; narrowing happens
// at reload time.
func (f *Feed) Subscribe(ctx context.Context, table string, _ *gateway.EqFilter) (gateway.Subscription, error) {
	if table == "" {
		return nil, domain.ErrInvalidPayload
	}
	pubsub := f.client.Subscribe(ctx, "changes:"+table)
	s := &subscription{
		table:  table,
		pubsub: pubsub,
		events: make(chan gateway.Event, 16),
		done:   make(chan struct{}),
		logger: f.logger.With(zap.String("table", table)),
	}
	go s.run()
	return s, nil
}

type subscription struct {
	table  string
	pubsub *redislib.PubSub
	events chan gateway.Event
	done   chan struct{}
	logger *zap.Logger

	closeOnce sync.Once
}

func (s *subscription) Events() <-chan gateway.Event { return s.events }

func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.pubsub.Close()
		<-s.done
		close(s.events)
	})
	return err
}

func (s *subscription) run() {
	defer close(s.done)

	for msg := range s.pubsub.Channel() {
		action := gateway.Action(msg.Payload)
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
