package fairness

import "chorewheel/internal/model"

// Capacity returns the workload multiplier for a member classification.
// Loads are divided by capacity when comparing candidates, so a child with
// one assignment looks as loaded as an adult with three.
func Capacity(c model.Classification) float64 {
	switch c {
	case model.ClassAdult:
		return 1.0
	case model.ClassTeen:
		return 0.6
	default:
		return 0.3
	}
}
