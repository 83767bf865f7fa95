package model

import "time"

// Frequency is the recurrence cadence of a task.
type Frequency string

const (
	FreqDaily    Frequency = "DAILY"
	FreqWeekly   Frequency = "WEEKLY"
	FreqBiweekly Frequency = "BIWEEKLY"
	FreqMonthly  Frequency = "MONTHLY"
	FreqOnce     Frequency = "ONCE"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqMonthly, FreqOnce:
		return true
	}
	return false
}

// Advance returns the next due timestamp after t for this cadence. The
// monthly step uses calendar months, not a fixed day count. ONCE does not
// recur; callers deactivate the rotation instead of advancing it.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FreqDaily:
		return t.AddDate(0, 0, 1)
	case FreqWeekly:
		return t.AddDate(0, 0, 7)
	case FreqBiweekly:
		return t.AddDate(0, 0, 14)
	case FreqMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t
	}
}

type Task struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Frequency   Frequency `json:"frequency"`
	// Weight is the difficulty on a 1–5 scale; it feeds both points earned
	// and the selector's load accounting.
	Weight int `json:"weight"`
	// MinClassification, when set, excludes members below that band
	// (e.g. TEEN excludes children).
	MinClassification *Classification `json:"min_classification,omitempty"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Rotation links a task to its recurrence schedule. NextDue only moves
// forward; each firing advances it by the task's cadence computed from the
// previous value so repeated late runs do not drift.
type Rotation struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	NextDue   time.Time `json:"next_due"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
