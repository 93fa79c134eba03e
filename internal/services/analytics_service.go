package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
)

// AnalyticsRepository defines the persistence operations for analytics
type AnalyticsRepository interface {
	Insert(ctx context.Context, event *models.AnalyticsEvent) error
	CountPageViews(ctx context.Context, start, end time.Time) (int, error)
	PageViewsByDay(ctx context.Context, start, end time.Time) ([]models.DailyCount, error)
}

// AnalyticsService records usage events and serves summaries. Tracking is
// best-effort throughout: a failed insert is logged and swallowed so
// analytics can never break the board.
type AnalyticsService struct {
	repo   AnalyticsRepository
	logger *slog.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, logger: logger}
}

// Track stores one event.
func (s *AnalyticsService) Track(ctx context.Context, event *models.AnalyticsEvent) {
	if !models.ValidEventType(event.EventType) {
		s.logger.Warn("dropping analytics event with unknown type", slog.String("event_type", event.EventType))
		return
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		s.logger.Error("failed to track analytics event",
			slog.String("event_type", event.EventType),
			slog.Any("error", err))
	}
}

// TrackStatusUpdate records an owner toggling a canteen's status.
func (s *AnalyticsService) TrackStatusUpdate(ctx context.Context, canteenID, canteenName, newStatus string) {
	owner := "owner"
	s.Track(ctx, &models.AnalyticsEvent{
		EventType:   models.EventCanteenStatusUpdate,
		CanteenID:   &canteenID,
		CanteenName: &canteenName,
		UserType:    &owner,
		Metadata:    map[string]string{"newStatus": newStatus},
	})
}

// TrackOwnerLogin records a successful owner PIN verification.
func (s *AnalyticsService) TrackOwnerLogin(ctx context.Context, canteenID, canteenName string) {
	owner := "owner"
	s.Track(ctx, &models.AnalyticsEvent{
		EventType:   models.EventOwnerLogin,
		CanteenID:   &canteenID,
		CanteenName: &canteenName,
		UserType:    &owner,
	})
}

// Summary returns page-view totals for the date range. Zero-valued bounds
// are open-ended.
func (s *AnalyticsService) Summary(ctx context.Context, start, end time.Time) (*models.AnalyticsSummary, error) {
	total, err := s.repo.CountPageViews(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count page views: %w", err)
	}

	byDay, err := s.repo.PageViewsByDay(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate page views: %w", err)
	}
	if byDay == nil {
		byDay = []models.DailyCount{}
	}

	return &models.AnalyticsSummary{
		TotalPageViews: total,
		PageViewsByDay: byDay,
	}, nil
}
