package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type profileGateway struct {
	pool *pgxpool.Pool
}

// NewProfileGateway returns a pgx-backed implementation of
// ProfileGateway.
func NewProfileGateway(pool *pgxpool.Pool) gateway.ProfileGateway {
	return &profileGateway{pool: pool}
}

func (g *profileGateway) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, COALESCE(email, '') FROM profiles`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "profile list failed", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Email); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "profile scan failed", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
