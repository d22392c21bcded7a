package usecase

import "context"

// Notifier delivers transient user-visible acknowledgments after
// successful mutations. Delivery is best-effort: engines log and
// swallow any error so notification problems never change a mutation's
// reported outcome.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
