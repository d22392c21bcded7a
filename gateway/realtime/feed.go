// Package realtime subscribes to the hosted platform's websocket change
// feed and converts row-change broadcasts into gateway events. The feed
// is advisory: consumers reload collections instead of trusting event
// payloads, so dropped or duplicated messages are harmless.
package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

// Config controls the websocket connection to the feed endpoint.
type Config struct {
	// URL is the gateway base URL; the websocket endpoint is derived
	// from it.
	URL               string
	AnonKey           string
	AccessToken       string
	HeartbeatInterval time.Duration
	BufferSize        int
	MaxBackoff        time.Duration
}

// Feed implements gateway.FeedGateway over a phoenix-style websocket.
type Feed struct {
	cfg    Config
	logger *zap.Logger
}

// New builds the websocket feed gateway.
func New(cfg Config, logger *zap.Logger) (*Feed, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "feed URL and anon key are required")
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 25 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{cfg: cfg, logger: logger}, nil
}

// Subscribe opens one websocket per subscription and delivers change
// events until Close. The connection reconnects with capped backoff;
// events arriving while the consumer lags are dropped.
func (f *Feed) Subscribe(ctx context.Context, table string, filter *gateway.EqFilter) (gateway.Subscription, error) {
	if table == "" {
		return nil, domain.ErrInvalidPayload
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &subscription{
		feed:   f,
		topic:  topicFor(table, filter),
		table:  table,
		events: make(chan gateway.Event, f.cfg.BufferSize),
		cancel: cancel,
		done:   make(chan struct{}),
		logger: f.logger.With(zap.String("table", table)),
	}
	go s.run(subCtx)
	return s, nil
}

type subscription struct {
	feed   *Feed
	topic  string
	table  string
	events chan gateway.Event
	cancel context.CancelFunc
	done   chan struct{}
	logger *zap.Logger

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

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.session(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("feed connection lost, reconnecting",
				zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, s.feed.cfg.MaxBackoff)
			continue
		}
		backoff = time.Second
	}
}

// session dials, joins the topic, heartbeats, and pumps events until
// the connection drops or the subscription closes.
func (s *subscription) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.feed.endpoint(), nil)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "feed dial failed", err)
	}
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(msg phoenixMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	join := phoenixMessage{
		Topic: s.topic,
		Event: "phx_join",
		Ref:   "1",
	}
	join.Payload, _ = json.Marshal(map[string]string{"user_token": s.feed.bearer()})
	if err := write(join); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "feed join failed", err)
	}

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go s.heartbeat(heartbeatCtx, write)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg phoenixMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return domain.WrapError(domain.ErrCodeUnavailable, "feed read failed", err)
		}
		if action, ok := decodeAction(msg); ok {
			s.publish(gateway.Event{Table: s.table, Action: action})
		}
	}
}

func (s *subscription) heartbeat(ctx context.Context, write func(phoenixMessage) error) {
	ticker := time.NewTicker(s.feed.cfg.HeartbeatInterval)
	defer ticker.Stop()

	ref := 2
	for {
		select {
		case <-ticker.C:
			msg := phoenixMessage{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Payload: json.RawMessage("{}"),
				Ref:     strconv.Itoa(ref),
			}
			ref++
			if err := write(msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *subscription) publish(ev gateway.Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("feed consumer lagging, event dropped")
	}
}

func (f *Feed) endpoint() string {
	base := strings.TrimRight(f.cfg.URL, "/")
	base = strings.Replace(base, "https://", "wss://", 1)
	base = strings.Replace(base, "http://", "ws://", 1)
	return base + "/realtime/v1/websocket?apikey=" + f.cfg.AnonKey + "&vsn=1.0.0"
}

func (f *Feed) bearer() string {
	if f.cfg.AccessToken != "" {
		return f.cfg.AccessToken
	}
	return f.cfg.AnonKey
}

type phoenixMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Ref     string          `json:"ref,omitempty"`
}

// decodeAction extracts the row-change action from either the legacy
// broadcast shape (event = INSERT/UPDATE/DELETE) or the
// postgres_changes envelope.
func decodeAction(msg phoenixMessage) (gateway.Action, bool) {
	switch msg.Event {
	case "INSERT", "UPDATE", "DELETE":
		return gateway.Action(msg.Event), true
	case "postgres_changes":
		var envelope struct {
			Data struct {
				Type string `json:"type"`
			} `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			return gateway.ActionUnknown, true
		}
		switch envelope.Data.Type {
		case "INSERT", "UPDATE", "DELETE":
			return gateway.Action(envelope.Data.Type), true
		default:
			return gateway.ActionUnknown, true
		}
	default:
		return gateway.ActionUnknown, false
	}
}

func topicFor(table string, filter *gateway.EqFilter) string {
	topic := "realtime:public:" + table
	if filter != nil && filter.Column != "" {
		topic += ":" + filter.Column + "=eq." + filter.Value
	}
	return topic
}
