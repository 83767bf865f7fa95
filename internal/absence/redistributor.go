// Package absence moves assignments away from members who are away: reassign
// to an eligible peer when one exists, postpone past the absence otherwise.
package absence

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chorewheel/internal/fairness"
	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

// Result summarizes one redistribution pass.
type Result struct {
	ProcessedAbsences int      `json:"processed_absences"`
	Reassigned        int      `json:"reassigned"`
	Postponed         int      `json:"postponed"`
	Errors            []string `json:"errors,omitempty"`
}

// Redistributor relocates the open assignments of currently-absent members.
type Redistributor struct {
	absences    *store.AbsenceStore
	assignments *store.AssignmentStore
	members     *store.MemberStore
	tasks       *store.TaskStore
	loader      *fairness.Loader
	logger      *slog.Logger
}

func NewRedistributor(absences *store.AbsenceStore, assignments *store.AssignmentStore, members *store.MemberStore, tasks *store.TaskStore, loader *fairness.Loader, logger *slog.Logger) *Redistributor {
	return &Redistributor{
		absences:    absences,
		assignments: assignments,
		members:     members,
		tasks:       tasks,
		loader:      loader,
		logger:      logger,
	}
}

// Run processes every absence active as of now. For each open assignment of
// the absent member due inside the window, the selector picks a replacement
// from the rest of the household; when nobody is eligible the due date is
// pushed to the day after the absence ends and the original owner keeps it.
// An assignment moves at most once per pass so overlapping absences cannot
// bounce it back and forth.
func (r *Redistributor) Run(now time.Time) Result {
	var result Result

	active, err := r.absences.ListActive(now)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list active absences: %v", err))
		return result
	}

	snapshots := make(map[int64]*fairness.Snapshot)
	moved := make(map[int64]bool)

	for _, ab := range active {
		result.ProcessedAbsences++

		member, err := r.members.GetByID(ab.MemberID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("absence %d: load member: %v", ab.ID, err))
			continue
		}
		if member == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("absence %d: member %d not found", ab.ID, ab.MemberID))
			continue
		}

		snap, ok := snapshots[member.HouseholdID]
		if !ok {
			snap, err = r.loader.Snapshot(member.HouseholdID, now)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("absence %d: snapshot household %d: %v", ab.ID, member.HouseholdID, err))
				continue
			}
			snapshots[member.HouseholdID] = snap
		}

		open, err := r.assignments.ListOpenByMemberDueBetween(ab.MemberID, windowStart(ab), windowEnd(ab))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("absence %d: list open assignments: %v", ab.ID, err))
			continue
		}

		for _, a := range open {
			if moved[a.ID] {
				continue
			}
			moved[a.ID] = true

			reassigned, err := r.relocate(a, ab, snap)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("assignment %d: %v", a.ID, err))
				continue
			}
			if reassigned {
				result.Reassigned++
			} else {
				result.Postponed++
			}
		}
	}

	r.logger.Info("absence redistribution finished",
		"processed_absences", result.ProcessedAbsences,
		"reassigned", result.Reassigned,
		"postponed", result.Postponed,
		"errors", len(result.Errors))
	return result
}

// relocate hands the assignment to a selected peer, or postpones it when the
// selector finds nobody. Returns true when the assignment was reassigned.
func (r *Redistributor) relocate(a model.Assignment, ab model.MemberAbsence, snap *fairness.Snapshot) (bool, error) {
	task, err := r.tasks.GetByID(a.TaskID)
	if err != nil {
		return false, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return false, fmt.Errorf("task %d not found", a.TaskID)
	}

	prefs, err := r.loader.TaskBias(task.ID)
	if err != nil {
		return false, fmt.Errorf("task bias: %w", err)
	}

	spec := fairness.TaskSpec{
		TaskID:            task.ID,
		Weight:            task.Weight,
		MinClassification: task.MinClassification,
	}
	decision, err := fairness.Select(spec, a.DueDate, snap.Without(ab.MemberID), prefs)
	if errors.Is(err, fairness.ErrNoEligibleMember) {
		newDue := postponedDue(a.DueDate, ab)
		if err := r.assignments.Postpone(a.ID, newDue); err != nil {
			return false, fmt.Errorf("postpone: %w", err)
		}
		r.logger.Debug("assignment postponed past absence",
			"assignment", a.ID, "member", ab.MemberID, "new_due", newDue)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select replacement: %w", err)
	}

	if err := r.assignments.Reassign(a.ID, decision.MemberID); err != nil {
		return false, fmt.Errorf("reassign: %w", err)
	}
	r.logger.Debug("assignment reassigned around absence",
		"assignment", a.ID, "from", ab.MemberID, "to", decision.MemberID)
	return true, nil
}

// windowStart and windowEnd bound the absence at day granularity, both ends
// inclusive.
func windowStart(ab model.MemberAbsence) time.Time {
	return dayStart(ab.StartDate)
}

func windowEnd(ab model.MemberAbsence) time.Time {
	return dayStart(ab.EndDate).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// postponedDue is the day after the absence ends, keeping the assignment's
// original time of day.
func postponedDue(due time.Time, ab model.MemberAbsence) time.Time {
	day := dayStart(ab.EndDate).AddDate(0, 0, 1)
	return day.Add(due.Sub(dayStart(due)))
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
