// Package scoring holds the points and leveling arithmetic. Everything here
// is a pure function over plain values; persistence and lookups live in the
// callers.
package scoring

import (
	"math"

	"chorewheel/internal/model"
)

// frequencyMultiplier scales points by how often a task recurs. Rarer tasks
// are worth more per completion.
var frequencyMultiplier = map[model.Frequency]float64{
	model.FreqDaily:    0.5,
	model.FreqWeekly:   1,
	model.FreqBiweekly: 1.5,
	model.FreqMonthly:  2,
	model.FreqOnce:     1,
}

const (
	onTimeBonus = 0.20
	streakBonus = 0.10

	// StreakThreshold is the minimum run of consecutive completion days
	// before the streak bonus applies.
	StreakThreshold = 3
)

// ComputePoints returns the points earned for completing a task of the given
// weight and frequency. The on-time and streak bonuses are each a fixed
// percentage of the base and are additive, not compounding. The result is
// rounded half-up.
func ComputePoints(weight int, freq model.Frequency, onTime bool, streakDays int) int {
	base := float64(weight) * frequencyMultiplier[freq] * 10

	total := base
	if onTime {
		total += base * onTimeBonus
	}
	if streakDays >= StreakThreshold {
		total += base * streakBonus
	}

	return int(math.Floor(total + 0.5))
}
