package store

import (
	"database/sql"
	"testing"
	"time"

	"chorewheel/internal/database"
	"chorewheel/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seedHousehold creates a household with one adult member and one weekly
// task, returning the ids most tests need.
func seedHousehold(t *testing.T, db *sql.DB) (householdID, memberID, taskID int64) {
	t.Helper()

	hs := NewHouseholdStore(db)
	ms := NewMemberStore(db)
	ts := NewTaskStore(db)

	h, err := hs.Create("Bramblewood")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	m, err := ms.Create(h.ID, "Rowan", model.ClassAdult)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	task, err := ts.Create(h.ID, "Dishes", "", model.FreqWeekly, 3, nil, testDue)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return h.ID, m.ID, task.ID
}

var testDue = time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
