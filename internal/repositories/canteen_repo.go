package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Arihant25/isitopen/internal/database"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/jackc/pgx/v5"
)

// CanteenRepository handles database operations for canteens
type CanteenRepository struct {
	db *database.DB
}

// NewCanteenRepository creates a new CanteenRepository
func NewCanteenRepository(db *database.DB) *CanteenRepository {
	return &CanteenRepository{db: db}
}

const canteenColumns = `id, name, icon, status, last_updated, pin, note, note_updated_at`

func scanCanteen(row pgx.Row) (*models.Canteen, error) {
	var c models.Canteen
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Status, &c.LastUpdated, &c.PIN, &c.Note, &c.NoteUpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

// List returns all canteens ordered by name.
func (r *CanteenRepository) List(ctx context.Context) ([]models.Canteen, error) {
	query := `SELECT ` + canteenColumns + ` FROM canteens ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var canteens []models.Canteen
	for rows.Next() {
		c, err := scanCanteen(rows)
		if err != nil {
			return nil, err
		}
		canteens = append(canteens, *c)
	}

	return canteens, database.MapPostgresError(rows.Err())
}

// GetByID returns a single canteen.
func (r *CanteenRepository) GetByID(ctx context.Context, id string) (*models.Canteen, error) {
	query := `SELECT ` + canteenColumns + ` FROM canteens WHERE id = $1`
	return scanCanteen(r.db.Pool.QueryRow(ctx, query, id))
}

// UpdateStatus sets the open/closed status and optionally the note.
// Passing note == nil leaves the existing note untouched.
func (r *CanteenRepository) UpdateStatus(ctx context.Context, id, status string, note *string) (*models.Canteen, error) {
	if note != nil {
		query := `
			UPDATE canteens
			SET status = $2, last_updated = NOW(), note = NULLIF($3, ''), note_updated_at = NOW()
			WHERE id = $1
			RETURNING ` + canteenColumns
		return scanCanteen(r.db.Pool.QueryRow(ctx, query, id, status, *note))
	}

	query := `
		UPDATE canteens
		SET status = $2, last_updated = NOW()
		WHERE id = $1
		RETURNING ` + canteenColumns
	return scanCanteen(r.db.Pool.QueryRow(ctx, query, id, status))
}

// UpdatePIN changes a canteen's PIN.
func (r *CanteenRepository) UpdatePIN(ctx context.Context, id, pin string) error {
	query := `UPDATE canteens SET pin = $2 WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, pin)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// EnsureSeeded inserts any canteen from the seed roster that is missing.
// Existing rows are never overwritten, so PIN and status changes survive.
// The roster lands atomically: a half-seeded board never serves traffic.
func (r *CanteenRepository) EnsureSeeded(ctx context.Context, seed []models.Canteen) error {
	query := `
		INSERT INTO canteens (id, name, icon, status, last_updated, pin)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		ON CONFLICT (id) DO NOTHING
	`

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, c := range seed {
			if _, err := tx.Exec(ctx, query, c.ID, c.Name, c.Icon, c.Status, c.PIN); err != nil {
				return err
			}
		}
		return nil
	})
	return database.MapPostgresError(err)
}

// ClearExpiredNotes removes notes older than the note expiry window.
func (r *CanteenRepository) ClearExpiredNotes(ctx context.Context, expiry time.Duration) (int64, error) {
	query := `
		UPDATE canteens
		SET note = NULL, note_updated_at = NULL
		WHERE note IS NOT NULL
		  AND note_updated_at <= NOW() - make_interval(secs => $1)
	`

	tag, err := r.db.Pool.Exec(ctx, query, expiry.Seconds())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
