package models

import "time"

// Analytics event types
const (
	EventPageView            = "page_view"
	EventCanteenStatusUpdate = "canteen_status_update"
	EventOwnerLogin          = "owner_login"
)

// ValidEventType reports whether t is a recognized analytics event type.
func ValidEventType(t string) bool {
	switch t {
	case EventPageView, EventCanteenStatusUpdate, EventOwnerLogin:
		return true
	}
	return false
}

// AnalyticsEvent is a lightweight usage event
type AnalyticsEvent struct {
	ID          string            `db:"id"`
	EventType   string            `db:"event_type"`
	Timestamp   time.Time         `db:"created_at"`
	CanteenID   *string           `db:"canteen_id"`
	CanteenName *string           `db:"canteen_name"`
	UserType    *string           `db:"user_type"`
	Metadata    map[string]string `db:"metadata"`
	UserAgent   *string           `db:"user_agent"`
}

// DailyCount is a per-day event count bucket
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AnalyticsSummary reports page-view totals over a date range
type AnalyticsSummary struct {
	TotalPageViews int          `json:"totalPageViews"`
	PageViewsByDay []DailyCount `json:"pageViewsByDay"`
}
