package gateway

import "context"

// Identity exposes the current session's user. The hosted platform owns
// authentication; this client only reads the resulting identity.
type Identity interface {
	UserID() string
	Email() string
	SignOut(ctx context.Context) error
}
