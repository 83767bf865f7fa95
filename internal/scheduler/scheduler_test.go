package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"chorewheel/internal/absence"
	"chorewheel/internal/clock"
	"chorewheel/internal/database"
	"chorewheel/internal/fairness"
	"chorewheel/internal/model"
	"chorewheel/internal/penalty"
	"chorewheel/internal/rotation"
	"chorewheel/internal/store"
)

var testDue = time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)

func TestTickRunsAllPasses(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	households := store.NewHouseholdStore(db)
	members := store.NewMemberStore(db)
	tasks := store.NewTaskStore(db)
	assignments := store.NewAssignmentStore(db)
	absences := store.NewAbsenceStore(db)
	penalties := store.NewPenaltyStore(db)

	h, err := households.Create("Bramblewood")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	m, err := members.Create(h.ID, "Rowan", model.ClassAdult)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	task, err := tasks.Create(h.ID, "Dishes", "", model.FreqWeekly, 3, nil, testDue)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// One already-overdue assignment for the escalator to penalize.
	stale, _, err := assignments.CreateIfAbsent(task.ID, m.ID, testDue.Add(-30*time.Hour))
	if err != nil {
		t.Fatalf("create stale assignment: %v", err)
	}

	loader := &fairness.Loader{Members: members, Absences: absences, Loads: assignments, Prefs: members}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	now := testDue.Add(time.Hour)
	s := New(
		rotation.NewGenerator(tasks, assignments, loader, logger),
		penalty.NewEscalator(assignments, penalties, logger),
		absence.NewRedistributor(absences, assignments, members, tasks, loader, logger),
		clock.At(now),
		logger,
		time.Minute,
	)

	s.Tick()

	// The due rotation was materialized.
	open, err := assignments.ListByMember(m.ID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected stale + generated assignment, got %d", len(open))
	}

	// The stale assignment crossed the 24h tier.
	got, _ := penalties.ListByAssignment(stale.ID)
	if len(got) != 1 || got[0].Reason != model.PenaltyOverdue24h {
		t.Errorf("penalties = %+v, want one 24h penalty", got)
	}

	// A second tick at the same instant changes nothing: the rotation
	// advanced past now and the penalty tiers are already applied.
	s.Tick()
	open, _ = assignments.ListByMember(m.ID)
	if len(open) != 2 {
		t.Errorf("second tick created assignments: %d", len(open))
	}
	got, _ = penalties.ListByAssignment(stale.ID)
	if len(got) != 1 {
		t.Errorf("second tick duplicated penalties: %d", len(got))
	}
}

func TestStartStop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	members := store.NewMemberStore(db)
	tasks := store.NewTaskStore(db)
	assignments := store.NewAssignmentStore(db)
	absences := store.NewAbsenceStore(db)
	loader := &fairness.Loader{Members: members, Absences: absences, Loads: assignments, Prefs: members}

	s := New(
		rotation.NewGenerator(tasks, assignments, loader, logger),
		penalty.NewEscalator(assignments, store.NewPenaltyStore(db), logger),
		absence.NewRedistributor(absences, assignments, members, tasks, loader, logger),
		clock.System{},
		logger,
		time.Hour,
	)

	s.Start(context.Background())
	s.Stop() // must not hang
}
