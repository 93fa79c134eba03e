package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Arihant25/isitopen/internal/database"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/google/uuid"
)

// AnalyticsRepository handles database operations for analytics events
type AnalyticsRepository struct {
	db *database.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *database.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Insert records an analytics event.
func (r *AnalyticsRepository) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO analytics_events (id, event_type, created_at, canteen_id, canteen_name, user_type, metadata, user_agent)
		VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.CanteenID,
		event.CanteenName,
		event.UserType,
		metadata,
		event.UserAgent,
	)

	return database.MapPostgresError(err)
}

// CountPageViews returns the number of page_view events within the range.
// Zero-valued bounds are open-ended.
func (r *AnalyticsRepository) CountPageViews(ctx context.Context, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM analytics_events
		WHERE event_type = 'page_view'
		  AND ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, nullableTime(start), nullableTime(end)).Scan(&count)
	return count, database.MapPostgresError(err)
}

// PageViewsByDay returns per-day page_view counts within the range,
// ordered by date.
func (r *AnalyticsRepository) PageViewsByDay(ctx context.Context, start, end time.Time) ([]models.DailyCount, error) {
	query := `
		SELECT TO_CHAR(created_at, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM analytics_events
		WHERE event_type = 'page_view'
		  AND ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Pool.Query(ctx, query, nullableTime(start), nullableTime(end))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var counts []models.DailyCount
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, database.MapPostgresError(err)
		}
		counts = append(counts, c)
	}

	return counts, database.MapPostgresError(rows.Err())
}

// DeleteBefore removes events older than the cutoff.
func (r *AnalyticsRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM analytics_events WHERE created_at < $1`

	tag, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
