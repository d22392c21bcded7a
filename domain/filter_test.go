package domain

import "testing"

func TestParseFilter(t *testing.T) {
	cases := []struct {
		raw     string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"active", FilterActive, false},
		{"done", FilterDone, false},
		{"assignedToMe", FilterAssignedToMe, false},
		{"assignedByMe", FilterAssignedByMe, false},
		{"bogus", FilterAll, true},
	}
	for _, tc := range cases {
		got, err := ParseFilter(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFilter(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	const me = "u1"
	mine := Task{ID: "t1", CreatorID: me, AssigneeID: me, Done: false}
	assigned := Task{ID: "t2", CreatorID: me, AssigneeID: "u2", Done: false}
	incoming := Task{ID: "t3", CreatorID: "u2", AssigneeID: me, Done: true}
	loose := Task{ID: "t4", CreatorID: me, Done: true}

	cases := []struct {
		name   string
		filter Filter
		task   Task
		want   bool
	}{
		{"all matches anything", FilterAll, loose, true},
		{"active wants not done", FilterActive, mine, true},
		{"active rejects done", FilterActive, loose, false},
		{"done wants done", FilterDone, incoming, true},
		{"done rejects active", FilterDone, assigned, false},
		{"assignedToMe matches my assignment", FilterAssignedToMe, incoming, true},
		{"assignedToMe rejects others", FilterAssignedToMe, assigned, false},
		{"assignedByMe wants delegation", FilterAssignedByMe, assigned, true},
		{"assignedByMe rejects self-assignment", FilterAssignedByMe, mine, false},
		{"assignedByMe rejects unassigned", FilterAssignedByMe, loose, false},
		{"assignedByMe rejects others' tasks", FilterAssignedByMe, incoming, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(tc.task, me); got != tc.want {
				t.Errorf("%v.Matches(%s) = %v, want %v", tc.filter, tc.task.ID, got, tc.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	if got, ok := NormalizeText("  buy milk  "); !ok || got != "buy milk" {
		t.Errorf("NormalizeText trimmed = %q, ok = %v", got, ok)
	}
	if _, ok := NormalizeText("   "); ok {
		t.Error("whitespace-only text should be rejected")
	}
	if _, ok := NormalizeText(""); ok {
		t.Error("empty text should be rejected")
	}
}

func TestTaskChangesApplyTo(t *testing.T) {
	task := Task{ID: "t1", Title: "old", AssigneeID: "u2"}

	title := "  new  "
	done := true
	nobody := ""
	changes := TaskChanges{Title: &title, Done: &done, AssigneeID: &nobody}
	changes.ApplyTo(&task)

	if task.Title != "new" {
		t.Errorf("title = %q, want trimmed %q", task.Title, "new")
	}
	if !task.Done {
		t.Error("done flag not applied")
	}
	if task.AssigneeID != "" {
		t.Errorf("assignee = %q, want cleared", task.AssigneeID)
	}
	if !(TaskChanges{}).IsZero() {
		t.Error("empty change set should be zero")
	}
	if changes.IsZero() {
		t.Error("populated change set should not be zero")
	}
}
