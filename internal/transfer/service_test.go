package transfer

import (
	"errors"
	"testing"
	"time"

	"chorewheel/internal/database"
	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

var testDue = time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)

type fixture struct {
	svc         *Service
	households  *store.HouseholdStore
	members     *store.MemberStore
	assignments *store.AssignmentStore
	householdID int64
	owner       int64
	peer        int64
	assignment  *model.Assignment
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := store.NewHouseholdStore(db)
	ms := store.NewMemberStore(db)
	ts := store.NewTaskStore(db)
	as := store.NewAssignmentStore(db)

	h, err := hs.Create("Bramblewood")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	owner, err := ms.Create(h.ID, "Rowan", model.ClassAdult)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	peer, err := ms.Create(h.ID, "Juniper", model.ClassAdult)
	if err != nil {
		t.Fatalf("create peer: %v", err)
	}
	task, err := ts.Create(h.ID, "Dishes", "", model.FreqWeekly, 3, nil, testDue)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	a, _, err := as.CreateIfAbsent(task.ID, owner.ID, testDue)
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	return &fixture{
		svc:         NewService(store.NewTransferStore(db), as, ms),
		households:  hs,
		members:     ms,
		assignments: as,
		householdID: h.ID,
		owner:       owner.ID,
		peer:        peer.ID,
		assignment:  a,
	}
}

func TestRequestAndAccept(t *testing.T) {
	f := setup(t)

	req, err := f.svc.Request(f.assignment.ID, f.owner, f.peer, "swapping for laundry")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Status != model.TransferPending {
		t.Errorf("status = %s, want PENDING", req.Status)
	}

	resolved, err := f.svc.Resolve(req.ID, true, f.peer, testDue)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != model.TransferAccepted {
		t.Errorf("status = %s, want ACCEPTED", resolved.Status)
	}

	a, _ := f.assignments.GetByID(f.assignment.ID)
	if a.MemberID != f.peer {
		t.Errorf("assignment owner = %d, want %d", a.MemberID, f.peer)
	}
	if a.PointsEarned != 0 {
		t.Errorf("acceptance awarded %d points", a.PointsEarned)
	}
}

func TestRequestValidation(t *testing.T) {
	f := setup(t)

	// Only the current owner may offer the assignment.
	if _, err := f.svc.Request(f.assignment.ID, f.peer, f.owner, ""); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("non-owner request = %v, want ErrForbidden", err)
	}

	// Transferring to yourself is a conflict.
	if _, err := f.svc.Request(f.assignment.ID, f.owner, f.owner, ""); !errors.Is(err, store.ErrConflict) {
		t.Errorf("self transfer = %v, want ErrConflict", err)
	}

	if _, err := f.svc.Request(9999, f.owner, f.peer, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing assignment = %v, want ErrNotFound", err)
	}

	if _, err := f.svc.Request(f.assignment.ID, f.owner, 9999, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing target = %v, want ErrNotFound", err)
	}
}

func TestRequestRejectsCrossHousehold(t *testing.T) {
	f := setup(t)

	other, err := f.households.Create("Thistledown")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	outsider, err := f.members.Create(other.ID, "Wren", model.ClassAdult)
	if err != nil {
		t.Fatalf("create outsider: %v", err)
	}

	if _, err := f.svc.Request(f.assignment.ID, f.owner, outsider.ID, ""); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("cross-household transfer = %v, want ErrForbidden", err)
	}
}

func TestRequestRejectsInactiveTarget(t *testing.T) {
	f := setup(t)

	if _, err := f.members.Update(f.peer, "Juniper", model.ClassAdult, false); err != nil {
		t.Fatalf("deactivate peer: %v", err)
	}

	if _, err := f.svc.Request(f.assignment.ID, f.owner, f.peer, ""); !errors.Is(err, store.ErrConflict) {
		t.Errorf("inactive target = %v, want ErrConflict", err)
	}
}

func TestRequestRejectsTerminalAssignment(t *testing.T) {
	f := setup(t)

	if _, err := f.assignments.Complete(f.assignment.ID, testDue, 30); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.assignments.Transition(f.assignment.ID, []model.AssignmentStatus{model.AssignmentCompleted}, model.AssignmentVerified); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if _, err := f.svc.Request(f.assignment.ID, f.owner, f.peer, ""); !errors.Is(err, store.ErrConflict) {
		t.Errorf("terminal assignment = %v, want ErrConflict", err)
	}
}

func TestSecondPendingRequestConflicts(t *testing.T) {
	f := setup(t)

	if _, err := f.svc.Request(f.assignment.ID, f.owner, f.peer, ""); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := f.svc.Request(f.assignment.ID, f.owner, f.peer, ""); !errors.Is(err, store.ErrConflict) {
		t.Errorf("second pending request = %v, want ErrConflict", err)
	}
}
