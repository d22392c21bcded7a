// Package gateway defines the surface this client consumes from the
// hosted data platform: table reads and writes, binary object storage,
// the realtime change feed, and session identity. Implementations live
// in the backend subpackages.
package gateway

import (
	"context"

	"github.com/taskboard/client/domain"
)

// Table names owned by the hosted platform.
const (
	TableTasks    = "tasks"
	TableComments = "comments"
	TableProfiles = "profiles"
)

// TaskGateway is the remote task table. List returns rows ordered by
// creation timestamp descending; insert returns nothing beyond
// success or failure.
type TaskGateway interface {
	List(ctx context.Context) ([]domain.Task, error)
	Insert(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, id string, changes domain.TaskChanges) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

// CommentGateway is the remote comment table. Comments are fetched per
// task and append-only from this client's perspective.
type CommentGateway interface {
	ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error)
	Insert(ctx context.Context, comment *domain.Comment) error
}

// ProfileGateway is the read-only profile lookup table.
type ProfileGateway interface {
	List(ctx context.Context) ([]domain.Profile, error)
}
