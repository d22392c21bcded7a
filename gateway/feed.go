package gateway

import "context"

// Action identifies the kind of row change a feed event reports.
type Action string

const (
	ActionInsert  Action = "INSERT"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionUnknown Action = "UNKNOWN"
)

// Event signals that a row in Table changed. Event payloads carry no
// guarantees beyond "something changed"; consumers must reload the
// affected collection rather than merge deltas.
type Event struct {
	Table  string
	Action Action
}

// EqFilter narrows a subscription to rows where Column equals Value.
type EqFilter struct {
	Column string
	Value  string
}

// Subscription is a live change stream for one table. Events returns
// the same channel on every call; the channel is closed after Close.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// FeedGateway registers interest in change events on a named table,
// optionally narrowed by an equality predicate on one column.
type FeedGateway interface {
	Subscribe(ctx context.Context, table string, filter *EqFilter) (Subscription, error)
}
