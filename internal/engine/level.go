package engine

import "math"

// XPPerLevelStep is the quadratic growth constant: reaching level n costs
// 100*(n-1)*n/2 cumulative XP, so level 2 = 100, level 3 = 300, level 4 = 600.
const XPPerLevelStep = 100

// XPRequiredForLevel returns the total cumulative XP needed to reach the
// given level. Level 1 requires 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return XPPerLevelStep * (level - 1) * level / 2
}

// LevelForXP returns the largest level whose threshold is at or below xp.
// xp = 0 maps to level 1. Monotonic non-decreasing in xp.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	// Invert the closed form to land near the answer, then settle on the
	// exact integer boundary. The fix-up loops run at most a couple of steps.
	n := int((1 + math.Sqrt(1+float64(8*xp)/float64(XPPerLevelStep))) / 2)
	if n < 1 {
		n = 1
	}
	for XPRequiredForLevel(n+1) <= xp {
		n++
	}
	for n > 1 && XPRequiredForLevel(n) > xp {
		n--
	}
	return n
}

// XPToNextLevel returns how much XP is missing to reach level+1. Display
// only: the level itself is always re-derived from the cumulative total.
func XPToNextLevel(xp int, level int) int {
	return XPRequiredForLevel(level+1) - xp
}
