// Package assignment implements the assignment lifecycle: the status state
// machine and the completion flow that turns a finished chore into points.
package assignment

import (
	"time"

	"chorewheel/internal/model"
)

// transitions is the allowed-move table. OVERDUE is not a dead end: the
// member can still start or complete the work, and redistribution may hand it
// back to PENDING under a new owner.
var transitions = map[model.AssignmentStatus][]model.AssignmentStatus{
	model.AssignmentPending:    {model.AssignmentInProgress, model.AssignmentCompleted, model.AssignmentOverdue, model.AssignmentCancelled},
	model.AssignmentInProgress: {model.AssignmentCompleted, model.AssignmentOverdue, model.AssignmentCancelled},
	model.AssignmentOverdue:    {model.AssignmentPending, model.AssignmentInProgress, model.AssignmentCompleted, model.AssignmentCancelled},
	model.AssignmentCompleted:  {model.AssignmentVerified, model.AssignmentCancelled},
}

// CanTransition reports whether the state machine allows moving from one
// status to another. Terminal statuses allow nothing.
func CanTransition(from, to model.AssignmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsOnTime reports whether a completion at completedAt beats the due date.
// Completing exactly at the due instant still counts.
func IsOnTime(completedAt, dueDate time.Time) bool {
	return !completedAt.After(dueDate)
}
