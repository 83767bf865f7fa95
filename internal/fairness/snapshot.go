package fairness

import (
	"fmt"
	"time"

	"chorewheel/internal/model"
)

// DefaultLoadWindow is the trailing window over which open assignment
// weights count toward a member's recent load.
const DefaultLoadWindow = 7 * 24 * time.Hour

// MemberSource lists the members of a household.
type MemberSource interface {
	ListByHousehold(householdID int64) ([]model.Member, error)
}

// AbsenceSource lists absences for a household's members.
type AbsenceSource interface {
	ListByHousehold(householdID int64) ([]model.MemberAbsence, error)
}

// LoadSource reports per-member open load and completion history.
type LoadSource interface {
	// OpenLoadByMember sums the task weights of pending and in-progress
	// assignments due inside [since, until], keyed by member.
	OpenLoadByMember(householdID int64, since, until time.Time) (map[int64]float64, error)
	// CompletedCountByMember counts all-time completed assignments per member.
	CompletedCountByMember(householdID int64) (map[int64]int, error)
}

// PreferenceSource maps members to their bias for one task.
type PreferenceSource interface {
	BiasByMemberForTask(taskID int64) (map[int64]model.PreferenceBias, error)
}

// Loader assembles selection snapshots from the stores. The snapshot is
// taken once per batch so selection inside a run is order-insensitive.
type Loader struct {
	Members  MemberSource
	Absences AbsenceSource
	Loads    LoadSource
	Prefs    PreferenceSource
	Window   time.Duration
}

// Snapshot is a frozen view of one household's members for selection.
type Snapshot struct {
	Candidates []Candidate
}

// Snapshot loads all members of the household with their recent load,
// completion totals, and absences, as of now.
func (l *Loader) Snapshot(householdID int64, now time.Time) (*Snapshot, error) {
	window := l.Window
	if window <= 0 {
		window = DefaultLoadWindow
	}

	members, err := l.Members.ListByHousehold(householdID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	absences, err := l.Absences.ListByHousehold(householdID)
	if err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	absByMember := make(map[int64][]model.MemberAbsence)
	for _, a := range absences {
		absByMember[a.MemberID] = append(absByMember[a.MemberID], a)
	}

	loads, err := l.Loads.OpenLoadByMember(householdID, now.Add(-window), now)
	if err != nil {
		return nil, fmt.Errorf("load by member: %w", err)
	}

	completed, err := l.Loads.CompletedCountByMember(householdID)
	if err != nil {
		return nil, fmt.Errorf("completed count by member: %w", err)
	}

	snap := &Snapshot{Candidates: make([]Candidate, 0, len(members))}
	for _, m := range members {
		snap.Candidates = append(snap.Candidates, Candidate{
			MemberID:       m.ID,
			Name:           m.Name,
			Classification: m.Classification,
			Active:         m.Active,
			RecentLoad:     loads[m.ID],
			CompletedTotal: completed[m.ID],
			Absences:       absByMember[m.ID],
		})
	}
	return snap, nil
}

// Without returns the snapshot's candidates minus one member. Used by the
// absence redistributor to exclude the absent member.
func (s *Snapshot) Without(memberID int64) []Candidate {
	out := make([]Candidate, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		if c.MemberID != memberID {
			out = append(out, c)
		}
	}
	return out
}

// TaskBias fetches the preference map for one task.
func (l *Loader) TaskBias(taskID int64) (map[int64]model.PreferenceBias, error) {
	prefs, err := l.Prefs.BiasByMemberForTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("task bias: %w", err)
	}
	return prefs, nil
}
