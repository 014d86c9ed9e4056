package models

import "time"

// DayCount is the number of reviews on one calendar day (YYYY-MM-DD).
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardSummary struct {
	TotalWords       int              `json:"totalWords"`
	WordsToday       int              `json:"wordsToday"`
	WordsForReview   int              `json:"wordsForReview"`
	DifficultyCounts map[string]int   `json:"difficultyCounts"`
	SevenDayData     []DayCount       `json:"sevenDayData"`
	RecentActivities []ReviewActivity `json:"recentActivities"`
	LearningStreak   int              `json:"learningStreak"`
	BetaRewards      int              `json:"betaRewards"`
	XP               int              `json:"xp"`
	Level            int              `json:"level"`
	XPForNextLevel   *int             `json:"xpForNextLevel"`
}

// ImportSummary reports the outcome of a spreadsheet import.
type ImportSummary struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Import job states.
const (
	ImportQueued  = "queued"
	ImportRunning = "running"
	ImportDone    = "completed"
	ImportFailed  = "failed"
)

// ImportJob tracks one queued spreadsheet import.
type ImportJob struct {
	ID         string         `json:"id"`
	UserID     int64          `json:"userId"`
	Source     string         `json:"source"`
	Status     string         `json:"status"`
	Rows       int            `json:"rows"`
	Summary    *ImportSummary `json:"summary,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	FinishedAt *time.Time     `json:"finishedAt,omitempty"`
}
