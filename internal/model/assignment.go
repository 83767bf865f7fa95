package model

import "time"

// AssignmentStatus is the lifecycle state of a single task occurrence handed
// to a member. See assignment.CanTransition for the allowed moves.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "PENDING"
	AssignmentInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentCompleted  AssignmentStatus = "COMPLETED"
	AssignmentVerified   AssignmentStatus = "VERIFIED"
	AssignmentOverdue    AssignmentStatus = "OVERDUE"
	AssignmentCancelled  AssignmentStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentVerified || s == AssignmentCancelled
}

type Assignment struct {
	ID           int64            `json:"id"`
	TaskID       int64            `json:"task_id"`
	MemberID     int64            `json:"member_id"`
	DueDate      time.Time        `json:"due_date"`
	Status       AssignmentStatus `json:"status"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	PointsEarned int              `json:"points_earned"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PenaltyReason identifies which overdue threshold a penalty was issued for.
// At most one penalty exists per (assignment, reason).
type PenaltyReason string

const (
	PenaltyOverdue24h PenaltyReason = "OVERDUE_24H"
	PenaltyOverdue48h PenaltyReason = "OVERDUE_48H"
	PenaltyOverdue72h PenaltyReason = "OVERDUE_72H"
)

// Penalty is an immutable record of points deducted for an overdue
// assignment.
type Penalty struct {
	ID           int64         `json:"id"`
	AssignmentID int64         `json:"assignment_id"`
	MemberID     int64         `json:"member_id"`
	Reason       PenaltyReason `json:"reason"`
	Points       int           `json:"points"`
	Description  string        `json:"description"`
	CreatedAt    time.Time     `json:"created_at"`
}
