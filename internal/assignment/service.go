package assignment

import (
	"fmt"
	"time"

	"chorewheel/internal/model"
	"chorewheel/internal/scoring"
	"chorewheel/internal/store"
)

// streakLookback bounds how far back the completion history is read when
// computing the streak at completion time. A streak longer than this earns
// the same bonus, so the cutoff is invisible to scoring.
const streakLookback = 30 * 24 * time.Hour

// Service drives assignment status changes and awards points on completion.
type Service struct {
	assignments *store.AssignmentStore
	tasks       *store.TaskStore
}

func NewService(assignments *store.AssignmentStore, tasks *store.TaskStore) *Service {
	return &Service{assignments: assignments, tasks: tasks}
}

// Start moves a pending assignment to IN_PROGRESS.
func (s *Service) Start(id int64) (*model.Assignment, error) {
	return s.transition(id, model.AssignmentInProgress)
}

// Verify confirms a completed assignment. Verification is terminal.
func (s *Service) Verify(id int64) (*model.Assignment, error) {
	return s.transition(id, model.AssignmentVerified)
}

// Cancel retires an assignment from any non-terminal status.
func (s *Service) Cancel(id int64) (*model.Assignment, error) {
	return s.transition(id, model.AssignmentCancelled)
}

func (s *Service) transition(id int64, to model.AssignmentStatus) (*model.Assignment, error) {
	a, err := s.assignments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, store.ErrNotFound
	}
	if !CanTransition(a.Status, to) {
		return nil, store.ErrConflict
	}

	ok, err := s.assignments.Transition(id, []model.AssignmentStatus{a.Status}, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Status changed between read and write.
		return nil, store.ErrConflict
	}
	return s.assignments.GetByID(id)
}

// Complete marks an assignment done as of now, computes the points earned
// from the task's weight and frequency plus timeliness and streak bonuses,
// and credits the member's XP. The current completion counts toward its own
// streak, so finishing a third consecutive day earns the streak bonus.
func (s *Service) Complete(id int64, now time.Time) (*model.Assignment, error) {
	a, err := s.assignments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, store.ErrNotFound
	}
	if !CanTransition(a.Status, model.AssignmentCompleted) {
		return nil, store.ErrConflict
	}

	task, err := s.tasks.GetByID(a.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("assignment %d references missing task %d: %w", a.ID, a.TaskID, store.ErrNotFound)
	}

	dates, err := s.assignments.CompletionDates(a.MemberID, now.Add(-streakLookback))
	if err != nil {
		return nil, err
	}
	streak := scoring.StreakDays(append(dates, now), now)

	points := scoring.ComputePoints(task.Weight, task.Frequency, IsOnTime(now, a.DueDate), streak)

	ok, err := s.assignments.Complete(id, now, points)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrConflict
	}
	return s.assignments.GetByID(id)
}
