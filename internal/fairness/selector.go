// Package fairness picks assignees for task occurrences. Select is a pure
// computation over an in-memory snapshot; it performs no I/O, so callers that
// allow concurrent member mutation must re-check eligibility before commit.
package fairness

import (
	"errors"
	"fmt"
	"time"

	"chorewheel/internal/model"
)

// ErrNoEligibleMember is returned when every candidate is filtered out.
// Callers must not create an assignment for the occurrence; they record the
// error and move on.
var ErrNoEligibleMember = errors.New("no eligible member for task")

// preferenceWeight is how strongly a PREFERRED/DISLIKED marking shifts a
// candidate's score relative to their capacity-adjusted load.
const preferenceWeight = 20.0

// Candidate is one member's slice of the selection snapshot. RecentLoad is
// the sum of pending and in-progress assignment weights over the trailing
// load window, before capacity adjustment.
type Candidate struct {
	MemberID       int64
	Name           string
	Classification model.Classification
	Active         bool
	RecentLoad     float64
	CompletedTotal int
	Absences       []model.MemberAbsence
}

// TaskSpec is the subset of a task the selector needs.
type TaskSpec struct {
	TaskID            int64
	Weight            int
	MinClassification *model.Classification
}

// Decision reports who was picked and why, for audit output.
type Decision struct {
	MemberID  int64
	Score     float64
	Rationale string
}

// Select picks the best assignee for a task occurrence due at dueDate.
// Candidates are filtered for eligibility (active, classification at or above
// the task minimum, no absence covering the due date), then scored with
// score = recentLoad/capacity − preferenceBias; lower wins. Ties break on
// fewest all-time completions, then on input order, so the result is
// reproducible for identical inputs.
func Select(task TaskSpec, dueDate time.Time, candidates []Candidate, prefs map[int64]model.PreferenceBias) (Decision, error) {
	var (
		best      Candidate
		bestScore float64
		found     bool
	)

	for _, c := range candidates {
		if !Eligible(task, dueDate, c) {
			continue
		}

		score := c.RecentLoad / Capacity(c.Classification)
		switch prefs[c.MemberID] {
		case model.BiasPreferred:
			score -= preferenceWeight
		case model.BiasDisliked:
			score += preferenceWeight
		}

		if !found || score < bestScore ||
			(score == bestScore && c.CompletedTotal < best.CompletedTotal) {
			best = c
			bestScore = score
			found = true
		}
	}

	if !found {
		return Decision{}, ErrNoEligibleMember
	}

	return Decision{
		MemberID:  best.MemberID,
		Score:     bestScore,
		Rationale: rationale(best, bestScore, prefs[best.MemberID]),
	}, nil
}

// Eligible reports whether a candidate may take the task occurrence: active,
// classification at or above the task minimum, and no absence covering the
// due date. Exported so plan validation applies the same filter the selector
// does.
func Eligible(task TaskSpec, dueDate time.Time, c Candidate) bool {
	if !c.Active {
		return false
	}
	if task.MinClassification != nil && c.Classification.Rank() < task.MinClassification.Rank() {
		return false
	}
	for _, a := range c.Absences {
		if a.Covers(dueDate) {
			return false
		}
	}
	return true
}

func rationale(c Candidate, score float64, bias model.PreferenceBias) string {
	s := fmt.Sprintf("member %d: load %.1f at capacity %.1f (score %.1f)",
		c.MemberID, c.RecentLoad, Capacity(c.Classification), score)
	switch bias {
	case model.BiasPreferred:
		s += ", prefers this task"
	case model.BiasDisliked:
		s += ", dislikes this task"
	}
	return s
}
