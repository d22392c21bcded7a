package cache

import (
	"testing"

	"github.com/taskboard/client/domain"
)

func newTestCollection(ids ...string) *Collection[domain.Task] {
	c := New[domain.Task]()
	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, domain.Task{ID: id, Title: "task " + id})
	}
	c.Replace(tasks)
	return c
}

func assertOrder(t *testing.T, c *Collection[domain.Task], want ...string) {
	t.Helper()
	items := c.Items()
	if len(items) != len(want) {
		t.Fatalf("collection has %d items, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d holds %q, want %q", i, items[i].ID, id)
		}
	}
}

func TestReplaceKeepsDeliveredOrder(t *testing.T) {
	c := newTestCollection("c", "b", "a")
	assertOrder(t, c, "c", "b", "a")
}

func TestPrependPlacesAtHead(t *testing.T) {
	c := newTestCollection("b", "a")
	c.Prepend(domain.Task{ID: "new"})
	assertOrder(t, c, "new", "b", "a")
}

func TestApplyMutatesInPlace(t *testing.T) {
	c := newTestCollection("a", "b")
	if ok := c.Apply("b", func(task *domain.Task) { task.Done = true }); !ok {
		t.Fatal("Apply did not find entity")
	}
	got, _ := c.Get("b")
	if !got.Done {
		t.Error("mutation not visible")
	}
	if ok := c.Apply("missing", func(*domain.Task) {}); ok {
		t.Error("Apply found a missing entity")
	}
	assertOrder(t, c, "a", "b")
}

func TestRemovePreservesOrder(t *testing.T) {
	c := newTestCollection("a", "b", "c", "d")
	if removed := c.Remove("b", "d"); removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
	assertOrder(t, c, "a", "c")
	if removed := c.Remove("missing"); removed != 0 {
		t.Errorf("removed %d for missing id, want 0", removed)
	}
}

func TestRemoveWhereReturnsIDsInOrder(t *testing.T) {
	c := New[domain.Task]()
	c.Replace([]domain.Task{
		{ID: "a", Done: true},
		{ID: "b"},
		{ID: "c", Done: true},
	})
	ids := c.RemoveWhere(func(task domain.Task) bool { return task.Done })
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("removed ids = %v, want [a c]", ids)
	}
	assertOrder(t, c, "b")
}

func TestSnapshotRestoreIsExact(t *testing.T) {
	c := New[domain.Task]()
	c.Replace([]domain.Task{
		{ID: "a", Title: "first", Done: true},
		{ID: "b", Title: "second"},
	})

	snapshot := c.Snapshot()
	c.Apply("a", func(task *domain.Task) { task.Title = "mutated" })
	c.Remove("b")
	c.Prepend(domain.Task{ID: "extra"})

	c.Restore(snapshot)

	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("restored %d items, want 2", len(items))
	}
	if items[0].ID != "a" || items[0].Title != "first" || !items[0].Done {
		t.Errorf("first item = %+v, want original", items[0])
	}
	if items[1].ID != "b" || items[1].Title != "second" {
		t.Errorf("second item = %+v, want original", items[1])
	}
}

func TestSnapshotIsIsolatedFromLaterMutations(t *testing.T) {
	c := newTestCollection("a")
	snapshot := c.Snapshot()
	c.Apply("a", func(task *domain.Task) { task.Title = "changed" })
	if snapshot[0].Title != "task a" {
		t.Error("snapshot shares storage with live collection")
	}
}

func TestResetEmptiesCollection(t *testing.T) {
	c := newTestCollection("a", "b")
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("len = %d after reset, want 0", c.Len())
	}
}
