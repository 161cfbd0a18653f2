package skill

import "math"

// MaxLevel is the highest level on the experience curve.
const MaxLevel = 120

// xpTable[L] is the total experience required to reach level L.
var xpTable = buildXPTable()

func buildXPTable() [MaxLevel + 1]int64 {
	var table [MaxLevel + 1]int64
	points := 0.0
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		n := float64(lvl - 1)
		points += math.Floor(n + 300*math.Pow(2, n/7))
		table[lvl] = int64(math.Floor(points / 4))
	}
	return table
}

// XPForLevel returns the total experience needed to reach level.
//
// Precondition: level is clamped into [1, MaxLevel].
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return xpTable[level]
}

// LevelForXP returns the level reached with xp total experience.
//
// Postcondition: 1 <= result <= MaxLevel.
func LevelForXP(xp int64) int {
	lo, hi := 1, MaxLevel
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if xpTable[mid] <= xp {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
