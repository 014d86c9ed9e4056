package gamification

import (
	"errors"
	"fmt"
	"time"

	"github.com/lexigo/reviewd/internal/models"
)

// DateLayout is the calendar-day format stored in LastCheckInDate.
const DateLayout = "2006-01-02"

// ErrAlreadyCheckedIn is returned when a user checks in twice on the same day.
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// LevelChange describes the level before and after a ledger update.
type LevelChange struct {
	From int
	To   int
}

// Up reports whether the update crossed at least one threshold.
func (c LevelChange) Up() bool {
	return c.To > c.From
}

// NewLevel returns the final level when it changed, nil otherwise.
func (c LevelChange) NewLevel() *int {
	if !c.Up() {
		return nil
	}
	l := c.To
	return &l
}

type CheckInReward struct {
	XP             int
	Beta           int
	MilestoneBonus int
	Level          LevelChange
}

// DayOf formats t as a calendar day in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

func addXP(p models.UserProgress, delta int) (models.UserProgress, LevelChange) {
	from := LevelForXP(p.XP)
	if delta > 0 {
		p.XP += delta
	}
	p.Level = LevelForXP(p.XP)
	return p, LevelChange{From: from, To: p.Level}
}

// ApplyExerciseResult adds the XP earned by an exercise and recomputes the level.
// Negative deltas are ignored so XP never decreases.
func ApplyExerciseResult(p models.UserProgress, xpDelta int) (models.UserProgress, LevelChange) {
	return addXP(p, xpDelta)
}

// ApplyDailyCheckIn advances the streak for today, grants the check-in reward and
// any unclaimed milestone bonus.
func ApplyDailyCheckIn(p models.UserProgress, today string) (models.UserProgress, CheckInReward, error) {
	day, err := time.Parse(DateLayout, today)
	if err != nil {
		return p, CheckInReward{}, fmt.Errorf("parse check-in day %q: %w", today, err)
	}
	if p.LastCheckInDate == today {
		return p, CheckInReward{}, ErrAlreadyCheckedIn
	}

	streak := 1
	if p.LastCheckInDate != "" {
		if last, err := time.Parse(DateLayout, p.LastCheckInDate); err == nil && last.AddDate(0, 0, 1).Equal(day) {
			streak = p.StreakDays + 1
		}
	}

	next := p
	next.ClaimedMilestones = append([]int(nil), p.ClaimedMilestones...)
	next.StreakDays = streak
	next.LastCheckInDate = today

	reward := CheckInReward{XP: CheckInXP, Beta: CheckInBeta}
	if bonus, ok := MilestoneBonus(streak); ok && !p.HasClaimed(streak) {
		reward.MilestoneBonus = bonus
		next.ClaimedMilestones = append(next.ClaimedMilestones, streak)
	}
	next.BetaBalance += reward.Beta + reward.MilestoneBonus

	next, reward.Level = addXP(next, reward.XP)
	return next, reward, nil
}

// TotalBeta is the Beta granted by a check-in including the milestone bonus.
func (r CheckInReward) TotalBeta() int {
	return r.Beta + r.MilestoneBonus
}
