// Package profile resolves user identifiers to human-readable labels.
// Profiles are a read-only lookup table; this client never writes them.
package profile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

// Directory is the in-memory profile lookup.
type Directory struct {
	profiles gateway.ProfileGateway
	logger   *zap.Logger

	mu   sync.RWMutex
	byID map[string]domain.Profile
}

// New builds an empty directory.
func New(profiles gateway.ProfileGateway, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		profiles: profiles,
		logger:   logger,
		byID:     make(map[string]domain.Profile),
	}
}

// Reload fetches the full lookup table. A failed reload keeps the
// previous labels; labels are cosmetic and stale ones beat none.
func (d *Directory) Reload(ctx context.Context) error {
	items, err := d.profiles.List(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "profile reload failed", err)
	}
	byID := make(map[string]domain.Profile, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	d.mu.Lock()
	d.byID = byID
	d.mu.Unlock()
	return nil
}

// Label resolves an identifier to its display email, falling back to a
// shortened identifier for unknown users.
func (d *Directory) Label(id string) string {
	if id == "" {
		return ""
	}
	d.mu.RLock()
	p, ok := d.byID[id]
	d.mu.RUnlock()
	if ok && p.Email != "" {
		return p.Email
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// All returns the known profiles, for assignee pickers.
func (d *Directory) All() []domain.Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Profile, 0, len(d.byID))
	for _, p := range d.byID {
		out = append(out, p)
	}
	return out
}
