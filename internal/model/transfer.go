package model

import "time"

type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferAccepted TransferStatus = "ACCEPTED"
	TransferRejected TransferStatus = "REJECTED"
)

// TransferRequest is a member-initiated hand-off of an assignment. Only the
// receiving member may resolve it, and an assignment can carry at most one
// pending request at a time.
type TransferRequest struct {
	ID           int64          `json:"id"`
	AssignmentID int64          `json:"assignment_id"`
	FromMemberID int64          `json:"from_member_id"`
	ToMemberID   int64          `json:"to_member_id"`
	Reason       string         `json:"reason"`
	Status       TransferStatus `json:"status"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
