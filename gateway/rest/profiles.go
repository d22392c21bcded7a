package rest

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/gateway"
)

type profileGateway struct {
	client *Client
}

// NewProfileGateway returns the read-only profile lookup gateway.
func NewProfileGateway(client *Client) gateway.ProfileGateway {
	return &profileGateway{client: client}
}

func (g *profileGateway) List(ctx context.Context) ([]domain.Profile, error) {
	var rows []domain.Profile
	if err := g.client.do(ctx, fasthttp.MethodGet, "/rest/v1/profiles", "select=*", nil, "", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
