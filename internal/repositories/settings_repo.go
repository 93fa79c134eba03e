package repositories

import (
	"context"
	"errors"

	"github.com/Arihant25/isitopen/internal/database"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository handles key/value application settings
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value for a setting key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE setting_key = $1`

	var value string
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", database.MapPostgresError(err)
	}
	return value, nil
}

// Set writes a setting value, creating the row if needed.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (setting_key, value)
		VALUES ($1, $2)
		ON CONFLICT (setting_key) DO UPDATE SET value = EXCLUDED.value
	`

	_, err := r.db.Pool.Exec(ctx, query, key, value)
	return database.MapPostgresError(err)
}

// SetIfAbsent writes a setting only when no value exists yet. Returns
// true when the write happened.
func (r *SettingsRepository) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	query := `
		INSERT INTO settings (setting_key, value)
		VALUES ($1, $2)
		ON CONFLICT (setting_key) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, key, value)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return tag.RowsAffected() > 0, nil
}
