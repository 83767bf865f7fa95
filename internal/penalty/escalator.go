// Package penalty scans overdue assignments and deducts escalating point
// penalties, at most one per severity threshold.
package penalty

import (
	"fmt"
	"log/slog"
	"time"

	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

// thresholds are evaluated largest first so a long-overdue assignment
// collects every crossed tier in one pass. Point values are deliberately
// small; a single neglected chore should sting, not crush a member's score.
var thresholds = []struct {
	Hours  float64
	Reason model.PenaltyReason
	Points int
}{
	{72, model.PenaltyOverdue72h, 3},
	{48, model.PenaltyOverdue48h, 2},
	{24, model.PenaltyOverdue24h, 1},
}

// Result summarizes one escalation pass.
type Result struct {
	Processed        int      `json:"processed"`
	PenaltiesCreated int      `json:"penalties_created"`
	Errors           []string `json:"errors,omitempty"`
}

// Escalator applies overdue penalties. Safe to re-run: the per-(assignment,
// reason) uniqueness in the store makes every deduction at-most-once.
type Escalator struct {
	assignments *store.AssignmentStore
	penalties   *store.PenaltyStore
	logger      *slog.Logger
}

func NewEscalator(assignments *store.AssignmentStore, penalties *store.PenaltyStore, logger *slog.Logger) *Escalator {
	return &Escalator{assignments: assignments, penalties: penalties, logger: logger}
}

// Run scans open assignments past their due date as of now, flips them to
// OVERDUE, and issues a penalty for each crossed threshold that does not
// already have one. Per-assignment failures are collected, not fatal.
func (e *Escalator) Run(now time.Time) Result {
	var result Result

	overdue, err := e.assignments.ListOverdueOpen(now)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list overdue assignments: %v", err))
		return result
	}

	for _, a := range overdue {
		result.Processed++

		if a.Status != model.AssignmentOverdue {
			if _, err := e.assignments.Transition(a.ID, []model.AssignmentStatus{model.AssignmentPending, model.AssignmentInProgress}, model.AssignmentOverdue); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("assignment %d: mark overdue: %v", a.ID, err))
				continue
			}
		}

		created, err := e.escalate(a, now)
		result.PenaltiesCreated += created
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("assignment %d: %v", a.ID, err))
		}
	}

	e.logger.Info("penalty processing finished",
		"processed", result.Processed,
		"penalties_created", result.PenaltiesCreated,
		"errors", len(result.Errors))
	return result
}

func (e *Escalator) escalate(a model.Assignment, now time.Time) (int, error) {
	hoursOverdue := now.Sub(a.DueDate).Hours()

	var created int
	for _, t := range thresholds {
		if hoursOverdue < t.Hours {
			continue
		}

		inserted, err := e.penalties.CreateIfAbsent(
			a.ID, a.MemberID, t.Reason, t.Points,
			fmt.Sprintf("assignment %d more than %.0fh overdue", a.ID, t.Hours),
		)
		if err != nil {
			return created, fmt.Errorf("penalty %s: %w", t.Reason, err)
		}
		if inserted {
			created++
			e.logger.Debug("penalty issued",
				"assignment", a.ID,
				"member", a.MemberID,
				"reason", t.Reason,
				"points", t.Points)
		}
	}
	return created, nil
}
