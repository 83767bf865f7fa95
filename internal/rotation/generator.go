// Package rotation materializes due recurring tasks into pending assignments
// and advances their schedules.
package rotation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chorewheel/internal/fairness"
	"chorewheel/internal/model"
	"chorewheel/internal/store"
)

// Result summarizes one processing pass. Per-rotation failures land in
// Errors; they never abort the rest of the batch.
type Result struct {
	Processed int      `json:"processed"`
	Generated int      `json:"generated"`
	Errors    []string `json:"errors,omitempty"`
}

// Generator turns due rotations into assignments via the fairness selector.
type Generator struct {
	tasks       *store.TaskStore
	assignments *store.AssignmentStore
	loader      *fairness.Loader
	logger      *slog.Logger
}

func NewGenerator(tasks *store.TaskStore, assignments *store.AssignmentStore, loader *fairness.Loader, logger *slog.Logger) *Generator {
	return &Generator{tasks: tasks, assignments: assignments, loader: loader, logger: logger}
}

// Run processes every active rotation whose next due time has elapsed as of
// now. Each occurrence gets an assignee from the selector; when nobody is
// eligible the occurrence is skipped but the rotation still advances, so one
// unsolvable occurrence cannot stall all future ones. The next due time is
// computed from the previous value, not from now, so repeated late runs do
// not drift the schedule.
func (g *Generator) Run(now time.Time) Result {
	var result Result

	due, err := g.tasks.ListDue(now)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list due rotations: %v", err))
		return result
	}

	// One snapshot per household per run keeps selection inside the batch
	// order-insensitive.
	snapshots := make(map[int64]*fairness.Snapshot)

	for _, d := range due {
		result.Processed++

		snap, ok := snapshots[d.Task.HouseholdID]
		if !ok {
			snap, err = g.loader.Snapshot(d.Task.HouseholdID, now)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("task %d: snapshot household %d: %v", d.Task.ID, d.Task.HouseholdID, err))
				continue
			}
			snapshots[d.Task.HouseholdID] = snap
		}

		created, err := g.generate(d, now, snap)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("task %d (%s): %v", d.Task.ID, d.Task.Name, err))
		}
		if created {
			result.Generated++
		}
	}

	g.logger.Info("rotation processing finished",
		"processed", result.Processed,
		"generated", result.Generated,
		"errors", len(result.Errors))
	return result
}

// generate handles a single due rotation: pick an assignee, create the
// occurrence, advance the schedule. The schedule advances on success, when
// the occurrence already exists, and on the NoEligibleMember skip; transient
// storage failures leave next_due untouched so the next run retries the same
// occurrence.
func (g *Generator) generate(d store.DueRotation, now time.Time, snap *fairness.Snapshot) (created bool, err error) {
	defer func() {
		if err != nil && !errors.Is(err, fairness.ErrNoEligibleMember) {
			return
		}
		if advErr := g.advance(d); advErr != nil && err == nil {
			err = advErr
		}
	}()

	prefs, err := g.loader.TaskBias(d.Task.ID)
	if err != nil {
		return false, fmt.Errorf("task bias: %w", err)
	}

	spec := fairness.TaskSpec{
		TaskID:            d.Task.ID,
		Weight:            d.Task.Weight,
		MinClassification: d.Task.MinClassification,
	}
	decision, err := fairness.Select(spec, d.Rotation.NextDue, snap.Candidates, prefs)
	if errors.Is(err, fairness.ErrNoEligibleMember) {
		return false, err
	}
	if err != nil {
		return false, fmt.Errorf("select assignee: %w", err)
	}

	_, created, err = g.assignments.CreateIfAbsent(d.Task.ID, decision.MemberID, d.Rotation.NextDue)
	if err != nil {
		return false, fmt.Errorf("create assignment: %w", err)
	}
	if created {
		g.logger.Debug("assignment generated",
			"task", d.Task.Name,
			"member", decision.MemberID,
			"due", d.Rotation.NextDue,
			"rationale", decision.Rationale)
	}
	return created, nil
}

func (g *Generator) advance(d store.DueRotation) error {
	if d.Task.Frequency == model.FreqOnce {
		if err := g.tasks.DeactivateRotation(d.Rotation.ID); err != nil {
			return fmt.Errorf("deactivate rotation: %w", err)
		}
		return nil
	}

	next := d.Task.Frequency.Advance(d.Rotation.NextDue)
	// ok=false means a concurrent run already advanced this rotation; the
	// schedule is still correct, so there is nothing to report.
	if _, err := g.tasks.AdvanceRotation(d.Rotation.ID, d.Rotation.NextDue, next); err != nil {
		return fmt.Errorf("advance rotation: %w", err)
	}
	return nil
}
