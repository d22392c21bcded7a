package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/taskboard/client/gateway"
)

type fakeSubscription struct {
	events chan gateway.Event
	once   sync.Once
	closed bool
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{events: make(chan gateway.Event, 8)}
}

func (s *fakeSubscription) Events() <-chan gateway.Event { return s.events }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() {
		s.closed = true
		close(s.events)
	})
	return nil
}

type fakeFeed struct {
	mu   sync.Mutex
	subs []struct {
		table  string
		filter *gateway.EqFilter
		sub    *fakeSubscription
	}
}

func (f *fakeFeed) Subscribe(ctx context.Context, table string, filter *gateway.EqFilter) (gateway.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := newFakeSubscription()
	f.subs = append(f.subs, struct {
		table  string
		filter *gateway.EqFilter
		sub    *fakeSubscription
	}{table, filter, sub})
	return sub, nil
}

func (f *fakeFeed) forTable(table string) []*fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeSubscription
	for _, s := range f.subs {
		if s.table == table {
			out = append(out, s.sub)
		}
	}
	return out
}

type fakeReloader struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeReloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return nil
}

func (r *fakeReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeCommentView struct {
	fakeReloader
	mu         sync.Mutex
	taskID     string
	openErr    error
	openCalls  int
	closeCalls int
}

func (v *fakeCommentView) Open(ctx context.Context, taskID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.openCalls++
	if v.openErr != nil {
		return v.openErr
	}
	v.taskID = taskID
	return nil
}

func (v *fakeCommentView) Close() {
	v.mu.Lock()
	v.taskID = ""
	v.closeCalls++
	v.mu.Unlock()
}

func (v *fakeCommentView) TaskID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.taskID
}

type offlineHealth struct{ online bool }

func (h offlineHealth) IsOnline() bool { return h.online }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func newTestReconciler(feed *fakeFeed, tasks *fakeReloader, comments *fakeCommentView) *Reconciler {
	return NewReconciler(feed, tasks, comments, nil, nil, ReconcilerConfig{
		// Keep the cron safety net out of the way for event tests.
		ResyncInterval: time.Hour,
		ReloadTimeout:  time.Second,
	})
}

func TestEachTaskEventTriggersOneReload(t *testing.T) {
	feed := &fakeFeed{}
	tasks := &fakeReloader{}
	comments := &fakeCommentView{}
	r := newTestReconciler(feed, tasks, comments)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	subs := feed.forTable(gateway.TableTasks)
	if len(subs) != 1 {
		t.Fatalf("task subscriptions = %d, want 1", len(subs))
	}

	subs[0].events <- gateway.Event{Table: gateway.TableTasks, Action: gateway.ActionInsert}
	waitFor(t, func() bool { return tasks.count() == 1 })

	// Every event counts, whatever the action and even if it echoes a
	// local write.
	subs[0].events <- gateway.Event{Table: gateway.TableTasks, Action: gateway.ActionUpdate}
	subs[0].events <- gateway.Event{Table: gateway.TableTasks, Action: gateway.ActionDelete}
	waitFor(t, func() bool { return tasks.count() == 3 })

	if comments.count() != 0 {
		t.Errorf("comment reloads = %d, want 0 without an open view", comments.count())
	}
}

func TestStartIsIdempotent(t *testing.T) {
	feed := &fakeFeed{}
	r := newTestReconciler(feed, &fakeReloader{}, &fakeCommentView{})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if got := len(feed.forTable(gateway.TableTasks)); got != 1 {
		t.Errorf("task subscriptions = %d after double start, want 1", got)
	}
}

func TestOpenCommentsSubscribesFiltered(t *testing.T) {
	feed := &fakeFeed{}
	comments := &fakeCommentView{}
	r := newTestReconciler(feed, &fakeReloader{}, comments)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	if err := r.OpenComments(context.Background(), "t1"); err != nil {
		t.Fatalf("open comments: %v", err)
	}
	if comments.TaskID() != "t1" {
		t.Errorf("view target = %q, want t1", comments.TaskID())
	}

	feed.mu.Lock()
	var filter *gateway.EqFilter
	for _, s := range feed.subs {
		if s.table == gateway.TableComments {
			filter = s.filter
		}
	}
	feed.mu.Unlock()
	if filter == nil || filter.Column != "task_id" || filter.Value != "t1" {
		t.Fatalf("comment subscription filter = %+v, want task_id eq t1", filter)
	}

	subs := feed.forTable(gateway.TableComments)
	subs[0].events <- gateway.Event{Table: gateway.TableComments, Action: gateway.ActionInsert}
	waitFor(t, func() bool { return comments.count() == 1 })
}

func TestOpenCommentsReplacesPreviousSubscription(t *testing.T) {
	feed := &fakeFeed{}
	comments := &fakeCommentView{}
	r := newTestReconciler(feed, &fakeReloader{}, comments)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	if err := r.OpenComments(context.Background(), "t1"); err != nil {
		t.Fatalf("open t1: %v", err)
	}
	if err := r.OpenComments(context.Background(), "t2"); err != nil {
		t.Fatalf("open t2: %v", err)
	}

	subs := feed.forTable(gateway.TableComments)
	if len(subs) != 2 {
		t.Fatalf("comment subscriptions = %d, want 2 total", len(subs))
	}
	if !subs[0].closed {
		t.Error("first comment subscription left open after switching target")
	}
	if subs[1].closed {
		t.Error("active comment subscription closed prematurely")
	}
}

func TestFailedOpenLeavesNoSubscriptionBehind(t *testing.T) {
	feed := &fakeFeed{}
	comments := &fakeCommentView{openErr: errors.New("load failed")}
	r := newTestReconciler(feed, &fakeReloader{}, comments)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	if err := r.OpenComments(context.Background(), "t1"); err == nil {
		t.Fatal("expected the open failure to surface")
	}
	if got := len(feed.forTable(gateway.TableComments)); got != 0 {
		t.Errorf("comment subscriptions = %d after failed open, want none", got)
	}
}

func TestCloseCommentsTearsDownViewAndSubscription(t *testing.T) {
	feed := &fakeFeed{}
	comments := &fakeCommentView{}
	r := newTestReconciler(feed, &fakeReloader{}, comments)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	if err := r.OpenComments(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	r.CloseComments()

	if comments.closeCalls != 1 {
		t.Errorf("view close calls = %d, want 1", comments.closeCalls)
	}
	subs := feed.forTable(gateway.TableComments)
	if !subs[0].closed {
		t.Error("comment subscription left open after close")
	}
}

func TestStopClosesEverySubscription(t *testing.T) {
	feed := &fakeFeed{}
	comments := &fakeCommentView{}
	r := newTestReconciler(feed, &fakeReloader{}, comments)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.OpenComments(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	r.Stop(context.Background())

	for _, sub := range append(feed.forTable(gateway.TableTasks), feed.forTable(gateway.TableComments)...) {
		if !sub.closed {
			t.Error("subscription left open after stop")
		}
	}
}

func TestPeriodicResyncReloadsCollections(t *testing.T) {
	feed := &fakeFeed{}
	tasks := &fakeReloader{}
	comments := &fakeCommentView{}
	r := NewReconciler(feed, tasks, comments, nil, nil, ReconcilerConfig{
		ResyncInterval: time.Second,
		ReloadTimeout:  time.Second,
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	if err := r.OpenComments(context.Background(), "t1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	waitFor(t, func() bool { return tasks.count() >= 1 && comments.count() >= 1 })
}

func TestSubSecondResyncIntervalStillSchedules(t *testing.T) {
	tasks := &fakeReloader{}
	r := NewReconciler(&fakeFeed{}, tasks, &fakeCommentView{}, nil, nil, ReconcilerConfig{
		ResyncInterval: 200 * time.Millisecond,
		ReloadTimeout:  time.Second,
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Stop(context.Background())

	waitFor(t, func() bool { return tasks.count() >= 1 })
}

func TestResyncSkippedWhileOffline(t *testing.T) {
	tasks := &fakeReloader{}
	comments := &fakeCommentView{}
	r := NewReconciler(&fakeFeed{}, tasks, comments, offlineHealth{online: false}, nil, ReconcilerConfig{
		ResyncInterval: time.Hour,
		ReloadTimeout:  time.Second,
	})

	r.resync()
	if tasks.count() != 0 {
		t.Errorf("offline resync reloaded tasks %d times, want 0", tasks.count())
	}
}
