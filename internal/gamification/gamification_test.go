package gamification_test

import (
	"errors"
	"testing"

	"github.com/lexigo/reviewd/internal/gamification"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{2499, 6},
		{2500, 7},
		{2999, 7},
		{4000, 8},
		{8999, 9},
		{9000, 10},
		{50000, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, gamification.LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestNextLevelXP(t *testing.T) {
	next, ok := gamification.NextLevelXP(1)
	require.True(t, ok)
	assert.Equal(t, 100, next)

	_, ok = gamification.NextLevelXP(gamification.MaxLevel())
	assert.False(t, ok)

	assert.Equal(t, 4000, gamification.LevelFloor(8))
	assert.Equal(t, 0, gamification.LevelFloor(0))
}

func TestExerciseXP(t *testing.T) {
	assert.Equal(t, 0, gamification.ExerciseXP(0))
	assert.Equal(t, 0, gamification.ExerciseXP(-10))
	assert.Equal(t, 10, gamification.ExerciseXP(100))
	assert.Equal(t, 10, gamification.ExerciseXP(150))
	assert.Equal(t, 8, gamification.ExerciseXP(75))
	assert.Equal(t, 6, gamification.ExerciseXP(60))

	prev := 0
	for score := 0; score <= 100; score++ {
		xp := gamification.ExerciseXP(score)
		assert.GreaterOrEqual(t, xp, prev, "score=%d", score)
		prev = xp
	}
}

func TestApplyExerciseResult_LevelUpReportedOnceWithFinalLevel(t *testing.T) {
	p := models.UserProgress{XP: 95, Level: 1}

	got, change := gamification.ApplyExerciseResult(p, 250)

	assert.Equal(t, 345, got.XP)
	assert.Equal(t, 3, got.Level)
	assert.True(t, change.Up())
	require.NotNil(t, change.NewLevel())
	assert.Equal(t, 3, *change.NewLevel())
}

func TestApplyExerciseResult_NoLevelChange(t *testing.T) {
	p := models.UserProgress{XP: 10, Level: 1}

	got, change := gamification.ApplyExerciseResult(p, 0)

	assert.Equal(t, 10, got.XP)
	assert.False(t, change.Up())
	assert.Nil(t, change.NewLevel())
}

func TestApplyExerciseResult_NegativeDeltaIgnored(t *testing.T) {
	p := models.UserProgress{XP: 120, Level: 2}

	got, _ := gamification.ApplyExerciseResult(p, -50)

	assert.Equal(t, 120, got.XP)
}

func TestApplyDailyCheckIn_FirstCheckIn(t *testing.T) {
	p := models.UserProgress{Level: 1}

	got, reward, err := gamification.ApplyDailyCheckIn(p, "2024-05-01")

	require.NoError(t, err)
	assert.Equal(t, 1, got.StreakDays)
	assert.Equal(t, "2024-05-01", got.LastCheckInDate)
	assert.Equal(t, gamification.CheckInXP, got.XP)
	assert.Equal(t, gamification.CheckInBeta, got.BetaBalance)
	assert.Equal(t, gamification.CheckInXP, reward.XP)
	assert.Equal(t, 0, reward.MilestoneBonus)
}

func TestApplyDailyCheckIn_ConsecutiveDayIncrements(t *testing.T) {
	p := models.UserProgress{}
	p, _, err := gamification.ApplyDailyCheckIn(p, "2024-05-01")
	require.NoError(t, err)

	p, _, err = gamification.ApplyDailyCheckIn(p, "2024-05-02")

	require.NoError(t, err)
	assert.Equal(t, 2, p.StreakDays)
}

func TestApplyDailyCheckIn_AcrossMonthBoundary(t *testing.T) {
	p := models.UserProgress{StreakDays: 4, LastCheckInDate: "2024-02-29"}

	got, _, err := gamification.ApplyDailyCheckIn(p, "2024-03-01")

	require.NoError(t, err)
	assert.Equal(t, 5, got.StreakDays)
}

func TestApplyDailyCheckIn_SkippedDayResets(t *testing.T) {
	p := models.UserProgress{}
	p, _, err := gamification.ApplyDailyCheckIn(p, "2024-05-01")
	require.NoError(t, err)

	p, _, err = gamification.ApplyDailyCheckIn(p, "2024-05-04")

	require.NoError(t, err)
	assert.Equal(t, 1, p.StreakDays)
}

func TestApplyDailyCheckIn_SameDayRejected(t *testing.T) {
	p := models.UserProgress{StreakDays: 3, LastCheckInDate: "2024-05-01", XP: 40, BetaBalance: 3}

	got, _, err := gamification.ApplyDailyCheckIn(p, "2024-05-01")

	require.Error(t, err)
	assert.True(t, errors.Is(err, gamification.ErrAlreadyCheckedIn))
	assert.Equal(t, p, got)
}

func TestApplyDailyCheckIn_InvalidDay(t *testing.T) {
	_, _, err := gamification.ApplyDailyCheckIn(models.UserProgress{}, "yesterday")
	assert.Error(t, err)
}

func TestApplyDailyCheckIn_MilestoneGrantedOnce(t *testing.T) {
	p := models.UserProgress{StreakDays: 9, LastCheckInDate: "2024-05-09", BetaBalance: 9}

	p, reward, err := gamification.ApplyDailyCheckIn(p, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StreakDays)
	assert.Equal(t, 5, reward.MilestoneBonus)
	assert.Equal(t, 6, reward.TotalBeta())
	assert.Equal(t, 9+1+5, p.BetaBalance)
	assert.Equal(t, []int{10}, p.ClaimedMilestones)

	// Streak broken, then rebuilt to 10: no second bonus.
	p.StreakDays = 9
	p.LastCheckInDate = "2024-06-09"
	before := p.BetaBalance
	p, reward, err = gamification.ApplyDailyCheckIn(p, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StreakDays)
	assert.Equal(t, 0, reward.MilestoneBonus)
	assert.Equal(t, before+1, p.BetaBalance)
	assert.Equal(t, []int{10}, p.ClaimedMilestones)
}

func TestApplyDailyCheckIn_DoesNotAliasClaimedMilestones(t *testing.T) {
	claimed := make([]int, 1, 4)
	claimed[0] = 10
	p := models.UserProgress{StreakDays: 17, LastCheckInDate: "2024-05-17", ClaimedMilestones: claimed}

	got, _, err := gamification.ApplyDailyCheckIn(p, "2024-05-18")

	require.NoError(t, err)
	assert.Equal(t, []int{10, 18}, got.ClaimedMilestones)
	assert.Equal(t, []int{10}, p.ClaimedMilestones)
}

func TestApplyDailyCheckIn_LevelUpFromCheckInXP(t *testing.T) {
	p := models.UserProgress{XP: 98, Level: 1}

	got, reward, err := gamification.ApplyDailyCheckIn(p, "2024-05-01")

	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	assert.True(t, reward.Level.Up())
}
