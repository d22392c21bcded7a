package rest

import (
	"testing"
	"time"

	"github.com/taskboard/client/domain"
)

func TestEqParam(t *testing.T) {
	if got := eqParam("id", "42"); got != "id=eq.42" {
		t.Errorf("eqParam = %q", got)
	}
}

func TestInParam(t *testing.T) {
	got := inParam("id", []string{"a", "b", "c"})
	if got != "id=in.(a,b,c)" {
		t.Errorf("inParam = %q", got)
	}
	if got := inParam("id", []string{"solo"}); got != "id=in.(solo)" {
		t.Errorf("single-value inParam = %q", got)
	}
}

func TestChangesPayloadOmitsUnsetFields(t *testing.T) {
	done := true
	payload := changesPayload(domain.TaskChanges{Done: &done})
	if len(payload) != 1 {
		t.Fatalf("payload = %v, want only the done column", payload)
	}
	if payload["done"] != true {
		t.Errorf("done = %v", payload["done"])
	}
}

func TestChangesPayloadClearsWithNulls(t *testing.T) {
	nobody := ""
	var never time.Time
	payload := changesPayload(domain.TaskChanges{AssigneeID: &nobody, DueAt: &never})

	if v, ok := payload["assignee_id"]; !ok || v != nil {
		t.Errorf("assignee_id = %v, want explicit null", v)
	}
	if v, ok := payload["due_at"]; !ok || v != nil {
		t.Errorf("due_at = %v, want explicit null", v)
	}
}

func TestChangesPayloadSetsValues(t *testing.T) {
	title := "renamed"
	assignee := "u2"
	due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	payload := changesPayload(domain.TaskChanges{Title: &title, AssigneeID: &assignee, DueAt: &due})

	if payload["title"] != "renamed" {
		t.Errorf("title = %v", payload["title"])
	}
	if payload["assignee_id"] != "u2" {
		t.Errorf("assignee_id = %v", payload["assignee_id"])
	}
	if payload["due_at"] != "2026-09-01T12:00:00Z" {
		t.Errorf("due_at = %v", payload["due_at"])
	}
}

func TestOptionalAndDeref(t *testing.T) {
	if optional("") != nil {
		t.Error("optional empty string should be nil")
	}
	if p := optional("x"); p == nil || *p != "x" {
		t.Error("optional lost its value")
	}
	if deref(nil) != "" {
		t.Error("deref nil should be empty")
	}
	v := "y"
	if deref(&v) != "y" {
		t.Error("deref lost its value")
	}
}
