// Package transfer implements member-initiated assignment hand-offs with
// accept/reject resolution.
package transfer

import (
	"fmt"
	"time"

	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

// Service validates and records transfer requests. Validation failures are
// loud: transfers are single-item, user-triggered operations, so unlike the
// batch jobs they fail fast instead of collecting errors.
type Service struct {
	transfers   *store.TransferStore
	assignments *store.AssignmentStore
	members     *store.MemberStore
}

func NewService(transfers *store.TransferStore, assignments *store.AssignmentStore, members *store.MemberStore) *Service {
	return &Service{transfers: transfers, assignments: assignments, members: members}
}

// Request opens a pending transfer of an assignment from its current owner
// to another member of the same household. Only the owner may offer their
// assignment, the target must be an active member of the same household, and
// an assignment carries at most one pending request at a time.
func (s *Service) Request(assignmentID, actingMemberID, toMemberID int64, reason string) (*model.TransferRequest, error) {
	a, err := s.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, store.ErrNotFound
	}
	if a.Status.Terminal() {
		return nil, store.ErrConflict
	}
	if a.MemberID != actingMemberID {
		return nil, store.ErrForbidden
	}
	if toMemberID == actingMemberID {
		return nil, fmt.Errorf("cannot transfer an assignment to its current owner: %w", store.ErrConflict)
	}

	from, err := s.members.GetByID(actingMemberID)
	if err != nil {
		return nil, err
	}
	to, err := s.members.GetByID(toMemberID)
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, store.ErrNotFound
	}
	if from.HouseholdID != to.HouseholdID {
		return nil, store.ErrForbidden
	}
	if !to.Active {
		return nil, fmt.Errorf("member %d is inactive: %w", toMemberID, store.ErrConflict)
	}

	return s.transfers.Create(assignmentID, actingMemberID, toMemberID, reason)
}

// Resolve accepts or rejects a pending request as of now. Only the receiving
// member may resolve; acceptance reassigns the underlying assignment without
// awarding any points.
func (s *Service) Resolve(transferID int64, accept bool, actingMemberID int64, now time.Time) (*model.TransferRequest, error) {
	return s.transfers.Resolve(transferID, accept, actingMemberID, now)
}
