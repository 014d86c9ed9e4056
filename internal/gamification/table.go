package gamification

import (
	"math"
	"sort"
)

// LevelThresholds holds the minimum XP of each level; level N starts at LevelThresholds[N-1].
var LevelThresholds = []int{0, 100, 300, 600, 1000, 1500, 2500, 4000, 6000, 9000}

// StreakMilestones maps a check-in streak length to its one-time Beta bonus.
var StreakMilestones = map[int]int{
	10: 5,
	18: 10,
	24: 15,
	33: 20,
}

const (
	CheckInXP      = 5
	CheckInBeta    = 1
	ExerciseBaseXP = 10
)

// MaxLevel is the highest reachable level.
func MaxLevel() int {
	return len(LevelThresholds)
}

// LevelForXP returns the number of thresholds at or below xp.
func LevelForXP(xp int) int {
	return sort.Search(len(LevelThresholds), func(i int) bool {
		return LevelThresholds[i] > xp
	})
}

// LevelFloor returns the XP at which level starts.
func LevelFloor(level int) int {
	if level < 1 {
		return 0
	}
	if level > len(LevelThresholds) {
		level = len(LevelThresholds)
	}
	return LevelThresholds[level-1]
}

// NextLevelXP returns the XP needed to reach level+1, or false at max level.
func NextLevelXP(level int) (int, bool) {
	if level < 0 || level >= len(LevelThresholds) {
		return 0, false
	}
	return LevelThresholds[level], true
}

// MilestoneBonus returns the Beta bonus for reaching streak, if any.
func MilestoneBonus(streak int) (int, bool) {
	b, ok := StreakMilestones[streak]
	return b, ok
}

// ExerciseXP scales the base XP by score (0-100), rounding half away from zero.
func ExerciseXP(score int) int {
	if score <= 0 {
		return 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(float64(ExerciseBaseXP) * float64(score) / 100))
}
