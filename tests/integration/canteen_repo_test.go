package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arihant25/isitopen/internal/models"
)

func TestCanteenRepository_EnsureSeededIsIdempotent(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	_, repo, _, _, _ := InitializeRepositories(db.DB)

	require.NoError(t, repo.EnsureSeeded(ctx, models.SeedCanteens))

	canteens, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, canteens, len(models.SeedCanteens))

	// Mutate one row, reseed, and check the mutation survives.
	first := models.SeedCanteens[0]
	require.NoError(t, repo.UpdatePIN(ctx, first.ID, "0000"))
	require.NoError(t, repo.EnsureSeeded(ctx, models.SeedCanteens))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "0000", got.PIN)

	canteens, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, canteens, len(models.SeedCanteens))
}

func TestCanteenRepository_GetByID(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	_, repo, _, _, _ := InitializeRepositories(db.DB)
	require.NoError(t, repo.EnsureSeeded(ctx, models.SeedCanteens))

	seed := models.SeedCanteens[0]
	got, err := repo.GetByID(ctx, seed.ID)
	require.NoError(t, err)
	assert.Equal(t, seed.Name, got.Name)
	assert.Equal(t, seed.PIN, got.PIN)
	assert.Equal(t, models.StatusClosed, got.Status)

	_, err = repo.GetByID(ctx, "ghost-canteen")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCanteenRepository_UpdateStatus(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	_, repo, _, _, _ := InitializeRepositories(db.DB)
	require.NoError(t, repo.EnsureSeeded(ctx, models.SeedCanteens))

	id := models.SeedCanteens[0].ID
	note := "back at 5pm"

	updated, err := repo.UpdateStatus(ctx, id, models.StatusOpen, &note)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, updated.Status)
	require.NotNil(t, updated.Note)
	assert.Equal(t, note, *updated.Note)
	require.NotNil(t, updated.NoteUpdatedAt)
	assert.WithinDuration(t, time.Now(), updated.LastUpdated, 5*time.Second)

	// nil note leaves the stored note alone.
	updated, err = repo.UpdateStatus(ctx, id, models.StatusClosed, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, updated.Status)
	require.NotNil(t, updated.Note)
	assert.Equal(t, note, *updated.Note)

	// Empty note string clears it.
	empty := ""
	updated, err = repo.UpdateStatus(ctx, id, models.StatusClosed, &empty)
	require.NoError(t, err)
	assert.Nil(t, updated.Note)

	_, err = repo.UpdateStatus(ctx, "ghost-canteen", models.StatusOpen, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCanteenRepository_UpdatePIN(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	_, repo, _, _, _ := InitializeRepositories(db.DB)
	require.NoError(t, repo.EnsureSeeded(ctx, models.SeedCanteens))

	id := models.SeedCanteens[1].ID
	require.NoError(t, repo.UpdatePIN(ctx, id, "9999"))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "9999", got.PIN)

	err = repo.UpdatePIN(ctx, "ghost-canteen", "9999")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCanteenRepository_ClearExpiredNotes(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	_, repo, _, _, _ := InitializeRepositories(db.DB)
	require.NoError(t, repo.EnsureSeeded(ctx, models.SeedCanteens))

	staleID := models.SeedCanteens[0].ID
	freshID := models.SeedCanteens[1].ID

	// Backdate one note past the expiry window; keep the other fresh.
	_, err := db.Pool.Exec(ctx,
		`UPDATE canteens SET note = 'closed for cleaning', note_updated_at = NOW() - INTERVAL '13 hours' WHERE id = $1`,
		staleID)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx,
		`UPDATE canteens SET note = 'special menu today', note_updated_at = NOW() WHERE id = $1`,
		freshID)
	require.NoError(t, err)

	cleared, err := repo.ClearExpiredNotes(ctx, models.NoteExpiry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	got, err := repo.GetByID(ctx, staleID)
	require.NoError(t, err)
	assert.Nil(t, got.Note)
	assert.Nil(t, got.NoteUpdatedAt)

	got, err = repo.GetByID(ctx, freshID)
	require.NoError(t, err)
	require.NotNil(t, got.Note)
	assert.Equal(t, "special menu today", *got.Note)
}
