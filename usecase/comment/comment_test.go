package comment

import (
	"context"
	"errors"
	"testing"

	"github.com/taskboard/client/domain"
	"github.com/taskboard/client/internal/cache"
)

type fakeCommentGateway struct {
	rows map[string][]domain.Comment

	failList   bool
	failTask   string
	failInsert bool

	listCalls   int
	insertCalls int

	onInsert func()
	onList   func()
}

var errGateway = errors.New("gateway rejected")

func (g *fakeCommentGateway) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	g.listCalls++
	if g.onList != nil {
		g.onList()
	}
	if g.failList || (g.failTask != "" && g.failTask == taskID) {
		return nil, errGateway
	}
	out := make([]domain.Comment, len(g.rows[taskID]))
	copy(out, g.rows[taskID])
	return out, nil
}

func (g *fakeCommentGateway) Insert(ctx context.Context, comment *domain.Comment) error {
	g.insertCalls++
	if g.onInsert != nil {
		g.onInsert()
	}
	if g.failInsert {
		return errGateway
	}
	g.rows[comment.TaskID] = append([]domain.Comment{*comment}, g.rows[comment.TaskID]...)
	return nil
}

func newEngine(rows map[string][]domain.Comment) (*Engine, *fakeCommentGateway) {
	if rows == nil {
		rows = map[string][]domain.Comment{}
	}
	gw := &fakeCommentGateway{rows: rows}
	return New(cache.New[domain.Comment](), gw, nil, nil), gw
}

func TestOpenLoadsTargetComments(t *testing.T) {
	engine, _ := newEngine(map[string][]domain.Comment{
		"t1": {{ID: "c2", TaskID: "t1", Body: "newer"}, {ID: "c1", TaskID: "t1", Body: "older"}},
		"t2": {{ID: "c9", TaskID: "t2"}},
	})

	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if engine.TaskID() != "t1" {
		t.Errorf("target = %q, want t1", engine.TaskID())
	}
	got := engine.Comments()
	if len(got) != 2 || got[0].ID != "c2" || got[1].ID != "c1" {
		t.Fatalf("comments = %v, want t1's rows newest first", got)
	}
}

func TestOpenReplacesPreviousTarget(t *testing.T) {
	engine, _ := newEngine(map[string][]domain.Comment{
		"t1": {{ID: "c1", TaskID: "t1"}},
		"t2": {{ID: "c2", TaskID: "t2"}},
	})
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open t1: %v", err)
	}
	if err := engine.Open(context.Background(), "t2"); err != nil {
		t.Fatalf("open t2: %v", err)
	}
	got := engine.Comments()
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("comments = %v, want only t2's rows", got)
	}
}

func TestCloseDropsTargetAndCache(t *testing.T) {
	engine, _ := newEngine(map[string][]domain.Comment{
		"t1": {{ID: "c1", TaskID: "t1"}},
	})
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	engine.Close()
	if engine.TaskID() != "" {
		t.Error("target survived close")
	}
	if len(engine.Comments()) != 0 {
		t.Error("cached comments survived close")
	}
}

func TestAddWithoutOpenTargetFails(t *testing.T) {
	engine, gw := newEngine(nil)
	err := engine.Add(context.Background(), "u1", "hello")
	if !errors.Is(err, domain.ErrNoCommentTarget) {
		t.Fatalf("err = %v, want ErrNoCommentTarget", err)
	}
	if gw.insertCalls != 0 {
		t.Error("insert reached the gateway without a target")
	}
}

func TestAddEmptyBodyIsSilentNoOp(t *testing.T) {
	engine, gw := newEngine(nil)
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := engine.Add(context.Background(), "u1", "  \n "); err != nil {
		t.Fatalf("expected nil error for empty body, got %v", err)
	}
	if gw.insertCalls != 0 {
		t.Error("empty body reached the gateway")
	}
	if len(engine.Comments()) != 0 {
		t.Error("empty body mutated the cache")
	}
}

func TestAddIsVisibleBeforeRemoteSettles(t *testing.T) {
	engine, gw := newEngine(nil)
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	var midFlight []domain.Comment
	gw.onInsert = func() { midFlight = engine.Comments() }

	if err := engine.Add(context.Background(), "u1", "first!"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(midFlight) != 1 || midFlight[0].Body != "first!" {
		t.Fatalf("optimistic comment not visible during remote call, saw %v", midFlight)
	}
	if midFlight[0].TaskID != "t1" || midFlight[0].AuthorID != "u1" {
		t.Errorf("comment scoped wrong: %+v", midFlight[0])
	}
}

func TestAddFailureResyncsOpenView(t *testing.T) {
	engine, gw := newEngine(map[string][]domain.Comment{
		"t1": {{ID: "c1", TaskID: "t1", Body: "server truth"}},
	})
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	gw.failInsert = true

	if err := engine.Add(context.Background(), "u1", "doomed"); err == nil {
		t.Fatal("expected insert failure to surface")
	}
	got := engine.Comments()
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("comments after resync = %v, want server truth", got)
	}
}

func TestReloadDiscardsStaleResponseAfterClose(t *testing.T) {
	engine, gw := newEngine(map[string][]domain.Comment{
		"t1": {{ID: "c1", TaskID: "t1"}},
	})
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Close the view while the list call is in flight; the late
	// response must not repopulate a closed view.
	gw.onList = func() {
		if gw.listCalls > 1 {
			engine.Close()
		}
	}
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(engine.Comments()) != 0 {
		t.Error("stale response repopulated a closed view")
	}
}

func TestFailedStaleReloadDoesNotWipeNewTarget(t *testing.T) {
	engine, gw := newEngine(map[string][]domain.Comment{
		"t1": {{ID: "c1", TaskID: "t1"}},
		"t2": {{ID: "c2", TaskID: "t2"}},
	})
	if err := engine.Open(context.Background(), "t1"); err != nil {
		t.Fatalf("open t1: %v", err)
	}

	// While a failing list call for t1 is in flight, the user opens
	// t2. The late failure belongs to the old target and must not
	// touch t2's freshly loaded comments.
	gw.failTask = "t1"
	var switched bool
	gw.onList = func() {
		if !switched {
			switched = true
			if err := engine.Open(context.Background(), "t2"); err != nil {
				t.Errorf("open t2: %v", err)
			}
		}
	}

	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("stale failed reload should be discarded, got %v", err)
	}
	got := engine.Comments()
	if len(got) != 1 || got[0].ID != "c2" {
		t.Fatalf("comments = %v, want t2's rows untouched", got)
	}
}

func TestReloadWithoutTargetIsNoOp(t *testing.T) {
	engine, gw := newEngine(nil)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if gw.listCalls != 0 {
		t.Error("reload without a target hit the gateway")
	}
}
