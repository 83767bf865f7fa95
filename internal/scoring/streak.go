package scoring

import "time"

// StreakDays counts the run of consecutive days ending today (inclusive) on
// which at least one completion happened. Days are compared at local-day
// granularity; duplicate completions on one day count once. A completion
// today is required for any streak at all.
func StreakDays(completions []time.Time, today time.Time) int {
	seen := make(map[string]bool, len(completions))
	for _, c := range completions {
		seen[c.Format("2006-01-02")] = true
	}

	streak := 0
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for seen[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
