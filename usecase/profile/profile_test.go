package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/taskboard/client/domain"
)

type fakeProfileGateway struct {
	rows []domain.Profile
	fail bool
}

func (g *fakeProfileGateway) List(ctx context.Context) ([]domain.Profile, error) {
	if g.fail {
		return nil, errors.New("gateway rejected")
	}
	return g.rows, nil
}

func TestLabelResolvesEmail(t *testing.T) {
	gw := &fakeProfileGateway{rows: []domain.Profile{
		{ID: "11111111-aaaa", Email: "ann@example.com"},
		{ID: "22222222-bbbb", Email: ""},
	}}
	d := New(gw, nil)
	if err := d.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := d.Label("11111111-aaaa"); got != "ann@example.com" {
		t.Errorf("label = %q, want email", got)
	}
	// Known profile without an email still falls back to the short id.
	if got := d.Label("22222222-bbbb"); got != "22222222" {
		t.Errorf("label = %q, want shortened id", got)
	}
	if got := d.Label("33333333-cccc"); got != "33333333" {
		t.Errorf("unknown label = %q, want shortened id", got)
	}
	if got := d.Label("short"); got != "short" {
		t.Errorf("short id label = %q, want id unchanged", got)
	}
	if got := d.Label(""); got != "" {
		t.Errorf("empty id label = %q, want empty", got)
	}
}

func TestFailedReloadKeepsPreviousLabels(t *testing.T) {
	gw := &fakeProfileGateway{rows: []domain.Profile{{ID: "u1", Email: "ann@example.com"}}}
	d := New(gw, nil)
	if err := d.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	gw.fail = true
	if err := d.Reload(context.Background()); err == nil {
		t.Fatal("expected reload failure to surface")
	}
	if got := d.Label("u1"); got != "ann@example.com" {
		t.Errorf("label after failed reload = %q, want previous email", got)
	}
}

func TestAllReturnsKnownProfiles(t *testing.T) {
	gw := &fakeProfileGateway{rows: []domain.Profile{
		{ID: "u1", Email: "ann@example.com"},
		{ID: "u2", Email: "bob@example.com"},
	}}
	d := New(gw, nil)
	if err := d.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(d.All()); got != 2 {
		t.Errorf("All() returned %d profiles, want 2", got)
	}
}
