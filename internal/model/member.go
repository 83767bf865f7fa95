package model

import "time"

// Classification buckets a member by rough age band. It drives both workload
// capacity and task eligibility.
type Classification string

const (
	ClassAdult Classification = "ADULT"
	ClassTeen  Classification = "TEEN"
	ClassChild Classification = "CHILD"
)

// Rank orders classifications youngest to oldest, for minimum-classification
// checks on tasks.
func (c Classification) Rank() int {
	switch c {
	case ClassAdult:
		return 2
	case ClassTeen:
		return 1
	default:
		return 0
	}
}

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	switch c {
	case ClassAdult, ClassTeen, ClassChild:
		return true
	}
	return false
}

type Member struct {
	ID             int64          `json:"id"`
	HouseholdID    int64          `json:"household_id"`
	Name           string         `json:"name"`
	Classification Classification `json:"classification"`
	Active         bool           `json:"active"`
	HasPIN         bool           `json:"has_pin"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// MemberLevel tracks experience points and the derived level. One row per
// member, created lazily on first award.
type MemberLevel struct {
	MemberID  int64     `json:"member_id"`
	XP        int       `json:"xp"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceBias marks a task as liked or disliked by a member.
type PreferenceBias string

const (
	BiasPreferred PreferenceBias = "PREFERRED"
	BiasDisliked  PreferenceBias = "DISLIKED"
)

type MemberPreference struct {
	ID        int64          `json:"id"`
	MemberID  int64          `json:"member_id"`
	TaskID    int64          `json:"task_id"`
	Bias      PreferenceBias `json:"bias"`
	CreatedAt time.Time      `json:"created_at"`
}

// MemberAbsence is a closed date range during which a member cannot take
// assignments. Both bounds are inclusive, at day granularity.
type MemberAbsence struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Covers reports whether t falls inside the absence window.
func (a MemberAbsence) Covers(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start := time.Date(a.StartDate.Year(), a.StartDate.Month(), a.StartDate.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(a.EndDate.Year(), a.EndDate.Month(), a.EndDate.Day(), 0, 0, 0, 0, t.Location())
	return !day.Before(start) && !day.After(end)
}
