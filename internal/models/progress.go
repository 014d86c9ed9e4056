package models

import "time"

// UserProgress holds the gamification ledger of one user. Level is always
// derived from XP; Version guards compare-and-swap updates.
type UserProgress struct {
	UserID            int64     `json:"userId"`
	XP                int       `json:"xp"`
	Level             int       `json:"level"`
	StreakDays        int       `json:"streak"`
	LastCheckInDate   string    `json:"lastCheckInDate,omitempty"`
	BetaBalance       int       `json:"betaRewards"`
	ClaimedMilestones []int     `json:"claimedMilestones"`
	Version           int64     `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasClaimed reports whether the streak milestone bonus was already granted.
func (p UserProgress) HasClaimed(streak int) bool {
	for _, m := range p.ClaimedMilestones {
		if m == streak {
			return true
		}
	}
	return false
}

// CheckInUser is the user snapshot returned by a daily check-in.
type CheckInUser struct {
	Level       int `json:"level"`
	Streak      int `json:"streak"`
	XP          int `json:"xp"`
	BetaRewards int `json:"betaRewards"`
}

type CheckInResult struct {
	XPGained       int         `json:"xpGained"`
	BetaGained     int         `json:"betaGained"`
	MilestoneBonus int         `json:"milestoneBonus"`
	NewLevel       *int        `json:"newLevel"`
	User           CheckInUser `json:"user"`
}

type CheckInStatus struct {
	CheckedInToday bool   `json:"checkedInToday"`
	Streak         int    `json:"streak"`
	Today          string `json:"today"`
}

// UserProfile extends the ledger with level progress for display.
type UserProfile struct {
	UserProgress
	CurrentLevelXP int  `json:"currentLevelXp"`
	NextLevelXP    *int `json:"nextLevelXp"`
	MaxLevel       bool `json:"maxLevel"`
}

// ReviewActivity records one graded review of a vocabulary item.
type ReviewActivity struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	VocabularyID int64     `json:"vocabularyId"`
	Word         string    `json:"word"`
	Source       string    `json:"source"`
	Quality      int       `json:"quality"`
	Score        int       `json:"score"`
	IsCorrect    bool      `json:"isCorrect"`
	XPEarned     int       `json:"xpEarned"`
	CreatedAt    time.Time `json:"createdAt"`
}
