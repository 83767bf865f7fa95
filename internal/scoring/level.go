package scoring

import "math"

const xpPerLevel = 100

// XPForLevel returns the total experience required to finish the given level.
func XPForLevel(level int) int {
	return level * xpPerLevel
}

// LevelForXP returns the level a member with the given experience is on.
// Levels start at 1; every 100 XP advances one level.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

// LevelProgress returns how far through the current level the member is, as a
// whole percentage clamped to [0, 100].
func LevelProgress(xp, level int) int {
	earned := xp - (level-1)*xpPerLevel
	pct := int(math.Floor(float64(100*earned)/float64(xpPerLevel) + 0.5))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
