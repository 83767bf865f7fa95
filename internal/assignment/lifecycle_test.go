package assignment

import (
	"testing"
	"time"

	"chorewheel/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.AssignmentStatus
		want     bool
	}{
		{model.AssignmentPending, model.AssignmentInProgress, true},
		{model.AssignmentPending, model.AssignmentCompleted, true},
		{model.AssignmentPending, model.AssignmentOverdue, true},
		{model.AssignmentPending, model.AssignmentCancelled, true},
		{model.AssignmentPending, model.AssignmentVerified, false},
		{model.AssignmentInProgress, model.AssignmentCompleted, true},
		{model.AssignmentInProgress, model.AssignmentPending, false},
		{model.AssignmentOverdue, model.AssignmentCompleted, true},
		{model.AssignmentOverdue, model.AssignmentPending, true},
		{model.AssignmentCompleted, model.AssignmentVerified, true},
		{model.AssignmentCompleted, model.AssignmentInProgress, false},
		{model.AssignmentVerified, model.AssignmentCancelled, false},
		{model.AssignmentCancelled, model.AssignmentPending, false},
	}

	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsOnTime(t *testing.T) {
	due := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)

	if !IsOnTime(due.Add(-time.Hour), due) {
		t.Error("an hour early should be on time")
	}
	if !IsOnTime(due, due) {
		t.Error("exactly at the due instant should be on time")
	}
	if IsOnTime(due.Add(time.Second), due) {
		t.Error("a second late should not be on time")
	}
}
