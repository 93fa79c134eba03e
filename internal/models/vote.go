package models

import "time"

// Vote types
const (
	VoteCorrect   = "correct"
	VoteIncorrect = "incorrect"
)

// CommunityVote is a single student vote on whether a canteen's displayed
// status matches reality.
type CommunityVote struct {
	ID          string    `db:"id"`
	CanteenID   string    `db:"canteen_id"`
	VoteType    string    `db:"vote_type"`
	Timestamp   time.Time `db:"created_at"`
	PeriodStart time.Time `db:"period_start"`
}

// VoteSummary aggregates votes for one canteen within a voting period
type VoteSummary struct {
	CanteenID      string `json:"canteenId"`
	CorrectVotes   int    `json:"correctVotes"`
	IncorrectVotes int    `json:"incorrectVotes"`
}

// CurrentPeriodStart returns the start of the current 12-hour voting
// period, anchored at 00:00 and 12:00 UTC.
func CurrentPeriodStart(now time.Time) time.Time {
	now = now.UTC()
	periodHour := 0
	if now.Hour() >= 12 {
		periodHour = 12
	}
	return time.Date(now.Year(), now.Month(), now.Day(), periodHour, 0, 0, 0, time.UTC)
}
