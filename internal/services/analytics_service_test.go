package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsRepository implements AnalyticsRepository for testing
type MockAnalyticsRepository struct {
	events []models.AnalyticsEvent
}

func NewMockAnalyticsRepository() *MockAnalyticsRepository {
	return &MockAnalyticsRepository{}
}

func (m *MockAnalyticsRepository) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	m.events = append(m.events, *event)
	return nil
}

func (m *MockAnalyticsRepository) CountPageViews(ctx context.Context, start, end time.Time) (int, error) {
	count := 0
	for _, e := range m.events {
		if e.EventType == models.EventPageView {
			count++
		}
	}
	return count, nil
}

func (m *MockAnalyticsRepository) PageViewsByDay(ctx context.Context, start, end time.Time) ([]models.DailyCount, error) {
	return nil, nil
}

func newTestAnalyticsService(repo services.AnalyticsRepository) *services.AnalyticsService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewAnalyticsService(repo, logger)
}

func TestAnalyticsTrack_DropsUnknownEventType(t *testing.T) {
	repo := NewMockAnalyticsRepository()
	service := newTestAnalyticsService(repo)

	service.Track(context.Background(), &models.AnalyticsEvent{EventType: "sql_injection"})
	service.Track(context.Background(), &models.AnalyticsEvent{EventType: models.EventPageView})

	require.Len(t, repo.events, 1)
	assert.Equal(t, models.EventPageView, repo.events[0].EventType)
}

func TestAnalyticsTrackStatusUpdate(t *testing.T) {
	repo := NewMockAnalyticsRepository()
	service := newTestAnalyticsService(repo)

	service.TrackStatusUpdate(context.Background(), "north", "North Mess", models.StatusOpen)

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, models.EventCanteenStatusUpdate, event.EventType)
	require.NotNil(t, event.CanteenID)
	assert.Equal(t, "north", *event.CanteenID)
	assert.Equal(t, models.StatusOpen, event.Metadata["newStatus"])
}

func TestAnalyticsSummary_EmptyRangeHasEmptySlice(t *testing.T) {
	service := newTestAnalyticsService(NewMockAnalyticsRepository())

	summary, err := service.Summary(context.Background(), time.Time{}, time.Time{})

	require.NoError(t, err)
	assert.Zero(t, summary.TotalPageViews)
	assert.NotNil(t, summary.PageViewsByDay)
	assert.Empty(t, summary.PageViewsByDay)
}
