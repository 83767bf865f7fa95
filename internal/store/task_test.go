package store

import (
	"testing"
	"time"

	"chorewheel/internal/model"
)

func TestTaskCreateMakesRotation(t *testing.T) {
	db := setupTestDB(t)
	_, _, taskID := seedHousehold(t, db)
	ts := NewTaskStore(db)

	r, err := ts.GetRotationByTask(taskID)
	if err != nil {
		t.Fatalf("get rotation: %v", err)
	}
	if r == nil {
		t.Fatal("expected rotation created with task")
	}
	if !r.NextDue.Equal(testDue) {
		t.Errorf("next_due = %v, want %v", r.NextDue, testDue)
	}
	if !r.Active {
		t.Error("new rotation should be active")
	}
}

func TestListDue(t *testing.T) {
	db := setupTestDB(t)
	householdID, _, _ := seedHousehold(t, db)
	ts := NewTaskStore(db)

	// A task due in the future should not appear.
	if _, err := ts.Create(householdID, "Windows", "", model.FreqMonthly, 4, nil, testDue.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("create future task: %v", err)
	}

	due, err := ts.ListDue(testDue.Add(time.Hour))
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due rotation, got %d", len(due))
	}
	if due[0].Task.Name != "Dishes" {
		t.Errorf("due task = %q, want Dishes", due[0].Task.Name)
	}
}

func TestAdvanceRotationGuard(t *testing.T) {
	db := setupTestDB(t)
	_, _, taskID := seedHousehold(t, db)
	ts := NewTaskStore(db)

	r, _ := ts.GetRotationByTask(taskID)
	next := model.FreqWeekly.Advance(r.NextDue)

	ok, err := ts.AdvanceRotation(r.ID, r.NextDue, next)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !ok {
		t.Fatal("first advance should succeed")
	}

	// A second advance from the stale previous value must not rewind.
	ok, err = ts.AdvanceRotation(r.ID, r.NextDue, next)
	if err != nil {
		t.Fatalf("stale advance: %v", err)
	}
	if ok {
		t.Error("stale advance should match zero rows")
	}

	r, _ = ts.GetRotationByTask(taskID)
	if !r.NextDue.Equal(next) {
		t.Errorf("next_due = %v, want %v", r.NextDue, next)
	}
}

func TestListUnassignedDue(t *testing.T) {
	db := setupTestDB(t)
	householdID, memberID, taskID := seedHousehold(t, db)
	ts := NewTaskStore(db)
	as := NewAssignmentStore(db)

	now := testDue.Add(time.Hour)

	occ, err := ts.ListUnassignedDue(householdID, now)
	if err != nil {
		t.Fatalf("list unassigned: %v", err)
	}
	if len(occ) != 1 || occ[0].Task.ID != taskID {
		t.Fatalf("expected the seeded occurrence, got %+v", occ)
	}

	// Once assigned, the occurrence drops out.
	if _, _, err := as.CreateIfAbsent(taskID, memberID, testDue); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	occ, err = ts.ListUnassignedDue(householdID, now)
	if err != nil {
		t.Fatalf("list unassigned after assign: %v", err)
	}
	if len(occ) != 0 {
		t.Fatalf("expected no occurrences, got %d", len(occ))
	}

	// A cancelled assignment frees the occurrence again.
	a, _ := as.ListByMember(memberID)
	if _, err := as.Transition(a[0].ID, []model.AssignmentStatus{model.AssignmentPending}, model.AssignmentCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	occ, _ = ts.ListUnassignedDue(householdID, now)
	if len(occ) != 1 {
		t.Fatalf("expected occurrence back after cancel, got %d", len(occ))
	}
}
