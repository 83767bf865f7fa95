// Package planner batch-assigns every currently unassigned due occurrence in
// a household. The deterministic path runs the fairness selector over a
// single snapshot; an optional proposer (an AI assistant, in practice) can
// suggest the pairing instead, with the selector validating and backfilling.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"chorewheel/internal/fairness"
	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

// Proposal pairs one task occurrence with a suggested assignee.
type Proposal struct {
	TaskID   int64  `json:"task_id"`
	MemberID int64  `json:"member_id"`
	Reason   string `json:"reason"`
}

// MemberSummary is the slice of member state a proposer sees.
type MemberSummary struct {
	MemberID       int64                `json:"member_id"`
	Name           string               `json:"name"`
	Classification model.Classification `json:"classification"`
	RecentLoad     float64              `json:"recent_load"`
}

// TaskSummary describes one occurrence awaiting assignment.
type TaskSummary struct {
	TaskID  int64     `json:"task_id"`
	Name    string    `json:"name"`
	Weight  int       `json:"weight"`
	DueDate time.Time `json:"due_date"`
}

// Input is the structured household summary handed to a proposer.
type Input struct {
	HouseholdID int64           `json:"household_id"`
	Occurrences []TaskSummary   `json:"occurrences"`
	Members     []MemberSummary `json:"members"`
}

// Proposer suggests a plan. Implementations are best-effort: any error or
// invalid suggestion degrades to the deterministic selector, never aborts
// the plan.
type Proposer interface {
	Propose(ctx context.Context, input Input) ([]Proposal, error)
}

// PlannedAssignment is one committed decision, with its rationale for audit
// display.
type PlannedAssignment struct {
	TaskID   int64     `json:"task_id"`
	TaskName string    `json:"task_name"`
	MemberID int64     `json:"member_id"`
	DueDate  time.Time `json:"due_date"`
	Note     string    `json:"note"`
}

// Plan reports what a planning run committed.
type Plan struct {
	AssignmentsCreated int                 `json:"assignments_created"`
	Assignments        []PlannedAssignment `json:"assignments"`
	BalanceScore       float64             `json:"balance_score"`
	Notes              []string            `json:"notes,omitempty"`
	Errors             []string            `json:"errors,omitempty"`
}

// Orchestrator runs the planning batch. Proposer may be nil.
type Orchestrator struct {
	tasks       *store.TaskStore
	assignments *store.AssignmentStore
	loader      *fairness.Loader
	proposer    Proposer
	logger      *slog.Logger
}

func NewOrchestrator(tasks *store.TaskStore, assignments *store.AssignmentStore, loader *fairness.Loader, proposer Proposer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		tasks:       tasks,
		assignments: assignments,
		loader:      loader,
		proposer:    proposer,
		logger:      logger,
	}
}

// Run assigns every due occurrence of the household that lacks a live
// assignment. The load snapshot is taken once at the start, so decisions
// inside one run are order-insensitive. With useProposer set and a proposer
// configured, valid suggestions take precedence; everything else falls back
// to the selector.
func (o *Orchestrator) Run(ctx context.Context, householdID int64, now time.Time, useProposer bool) (*Plan, error) {
	occurrences, err := o.tasks.ListUnassignedDue(householdID, now)
	if err != nil {
		return nil, fmt.Errorf("list unassigned occurrences: %w", err)
	}

	snap, err := o.loader.Snapshot(householdID, now)
	if err != nil {
		return nil, fmt.Errorf("snapshot household: %w", err)
	}

	plan := &Plan{}
	proposed := o.collectProposals(ctx, householdID, occurrences, snap, useProposer, plan)

	// Planned load starts from the snapshot and accumulates this run's
	// decisions, so the balance score reflects the committed outcome.
	load := make(map[int64]float64, len(snap.Candidates))
	for _, c := range snap.Candidates {
		load[c.MemberID] = c.RecentLoad
	}

	for _, occ := range occurrences {
		spec := fairness.TaskSpec{
			TaskID:            occ.Task.ID,
			Weight:            occ.Task.Weight,
			MinClassification: occ.Task.MinClassification,
		}

		memberID, note, err := o.decide(spec, occ, snap, proposed)
		if errors.Is(err, fairness.ErrNoEligibleMember) {
			plan.Errors = append(plan.Errors, fmt.Sprintf("task %d (%s): no eligible member", occ.Task.ID, occ.Task.Name))
			continue
		}
		if err != nil {
			plan.Errors = append(plan.Errors, fmt.Sprintf("task %d (%s): %v", occ.Task.ID, occ.Task.Name, err))
			continue
		}

		_, created, err := o.assignments.CreateIfAbsent(occ.Task.ID, memberID, occ.DueDate)
		if err != nil {
			plan.Errors = append(plan.Errors, fmt.Sprintf("task %d (%s): create assignment: %v", occ.Task.ID, occ.Task.Name, err))
			continue
		}
		if !created {
			// A concurrent run took this occurrence first.
			continue
		}

		load[memberID] += float64(occ.Task.Weight)
		plan.AssignmentsCreated++
		plan.Assignments = append(plan.Assignments, PlannedAssignment{
			TaskID:   occ.Task.ID,
			TaskName: occ.Task.Name,
			MemberID: memberID,
			DueDate:  occ.DueDate,
			Note:     note,
		})
	}

	plan.BalanceScore = balanceScore(snap.Candidates, load)

	o.logger.Info("plan orchestration finished",
		"household", householdID,
		"created", plan.AssignmentsCreated,
		"balance_score", plan.BalanceScore,
		"errors", len(plan.Errors))
	return plan, nil
}

// decide picks the assignee for one occurrence: a validated proposal when
// one exists, the selector otherwise.
func (o *Orchestrator) decide(spec fairness.TaskSpec, occ store.UnassignedOccurrence, snap *fairness.Snapshot, proposed map[int64]Proposal) (int64, string, error) {
	if p, ok := proposed[occ.Task.ID]; ok {
		note := p.Reason
		if note == "" {
			note = "proposed plan"
		}
		return p.MemberID, note, nil
	}

	prefs, err := o.loader.TaskBias(occ.Task.ID)
	if err != nil {
		return 0, "", fmt.Errorf("task bias: %w", err)
	}
	decision, err := fairness.Select(spec, occ.DueDate, snap.Candidates, prefs)
	if err != nil {
		return 0, "", err
	}
	return decision.MemberID, decision.Rationale, nil
}

// collectProposals asks the proposer for a plan and keeps only suggestions
// that name a real pending occurrence and an eligible member. Failures and
// rejected suggestions are recorded as notes; the run continues either way.
func (o *Orchestrator) collectProposals(ctx context.Context, householdID int64, occurrences []store.UnassignedOccurrence, snap *fairness.Snapshot, useProposer bool, plan *Plan) map[int64]Proposal {
	if !useProposer || o.proposer == nil || len(occurrences) == 0 {
		return nil
	}

	input := Input{HouseholdID: householdID}
	byTask := make(map[int64]store.UnassignedOccurrence, len(occurrences))
	for _, occ := range occurrences {
		byTask[occ.Task.ID] = occ
		input.Occurrences = append(input.Occurrences, TaskSummary{
			TaskID:  occ.Task.ID,
			Name:    occ.Task.Name,
			Weight:  occ.Task.Weight,
			DueDate: occ.DueDate,
		})
	}
	candidates := make(map[int64]fairness.Candidate, len(snap.Candidates))
	for _, c := range snap.Candidates {
		candidates[c.MemberID] = c
		input.Members = append(input.Members, MemberSummary{
			MemberID:       c.MemberID,
			Name:           c.Name,
			Classification: c.Classification,
			RecentLoad:     c.RecentLoad,
		})
	}

	proposals, err := o.proposer.Propose(ctx, input)
	if err != nil {
		o.logger.Warn("plan proposer failed, using deterministic selection", "error", err)
		plan.Notes = append(plan.Notes, fmt.Sprintf("proposer unavailable: %v", err))
		return nil
	}

	accepted := make(map[int64]Proposal, len(proposals))
	for _, p := range proposals {
		occ, ok := byTask[p.TaskID]
		if !ok {
			plan.Notes = append(plan.Notes, fmt.Sprintf("proposal for task %d ignored: not pending", p.TaskID))
			continue
		}
		c, ok := candidates[p.MemberID]
		if !ok {
			plan.Notes = append(plan.Notes, fmt.Sprintf("proposal for task %d ignored: unknown member %d", p.TaskID, p.MemberID))
			continue
		}
		spec := fairness.TaskSpec{
			TaskID:            occ.Task.ID,
			Weight:            occ.Task.Weight,
			MinClassification: occ.Task.MinClassification,
		}
		if !fairness.Eligible(spec, occ.DueDate, c) {
			plan.Notes = append(plan.Notes, fmt.Sprintf("proposal for task %d ignored: member %d not eligible", p.TaskID, p.MemberID))
			continue
		}
		accepted[p.TaskID] = p
	}
	return accepted
}

// balanceScore is the coefficient of variation of capacity-adjusted load
// across active members. Lower is more even; zero means perfectly balanced.
func balanceScore(candidates []fairness.Candidate, load map[int64]float64) float64 {
	var adjusted []float64
	for _, c := range candidates {
		if !c.Active {
			continue
		}
		adjusted = append(adjusted, load[c.MemberID]/fairness.Capacity(c.Classification))
	}
	if len(adjusted) == 0 {
		return 0
	}

	var sum float64
	for _, v := range adjusted {
		sum += v
	}
	mean := sum / float64(len(adjusted))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, v := range adjusted {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(adjusted))

	return math.Sqrt(variance) / mean
}
