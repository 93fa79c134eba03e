package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arihant25/isitopen/internal/models"
)

func TestRateLimitRepository_UpsertAndGet(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo, _, _, _, _ := InitializeRepositories(db.DB)

	key := models.CanteenLoginKey("north", "10.0.0.1")
	now := time.Now().UTC()

	record := &models.RateLimitRecord{
		Key:         key,
		Attempts:    2,
		LastAttempt: now,
	}
	require.NoError(t, repo.Upsert(ctx, record))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, key, got.Key)
	assert.Equal(t, 2, got.Attempts)
	assert.WithinDuration(t, now, got.LastAttempt, time.Second)
	assert.Nil(t, got.LockoutUntil)

	// Second upsert on the same key overwrites, including the lockout.
	until := now.Add(time.Hour)
	record.Attempts = 3
	record.LockoutUntil = &until
	require.NoError(t, repo.Upsert(ctx, record))

	got, err = repo.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Attempts)
	require.NotNil(t, got.LockoutUntil)
	assert.WithinDuration(t, until, *got.LockoutUntil, time.Second)
	assert.True(t, got.LockedOut(now))
}

func TestRateLimitRepository_GetMissingReturnsNil(t *testing.T) {
	db := freshDB(t)
	repo, _, _, _, _ := InitializeRepositories(db.DB)

	got, err := repo.Get(context.Background(), models.AdminLoginKey("10.9.9.9"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRateLimitRepository_Delete(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo, _, _, _, _ := InitializeRepositories(db.DB)

	key := models.AdminLoginKey("dev-token-1")
	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:         key,
		Attempts:    1,
		LastAttempt: time.Now().UTC(),
	}))

	require.NoError(t, repo.Delete(ctx, key))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent key is not an error.
	require.NoError(t, repo.Delete(ctx, key))
}

func TestRateLimitRepository_ListWithLockouts(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo, _, _, _, _ := InitializeRepositories(db.DB)

	now := time.Now().UTC()
	until := now.Add(30 * time.Minute)

	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:          models.CanteenLoginKey("north", "10.0.0.1"),
		Attempts:     3,
		LastAttempt:  now,
		LockoutUntil: &until,
	}))
	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:         models.CanteenLoginKey("south", "10.0.0.2"),
		Attempts:    1,
		LastAttempt: now,
	}))

	records, err := repo.ListWithLockouts(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.CanteenLoginKey("north", "10.0.0.1"), records[0].Key)
	assert.Equal(t, 3, records[0].Attempts)
}

func TestRateLimitRepository_DeleteExpired(t *testing.T) {
	db := freshDB(t)
	ctx := context.Background()
	repo, _, _, _, _ := InitializeRepositories(db.DB)

	now := time.Now().UTC()
	activeUntil := now.Add(time.Hour)
	pastUntil := now.Add(-2 * time.Hour)

	// Stale row with no lockout: prunable.
	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:         models.CanteenLoginKey("north", "10.0.0.1"),
		Attempts:    2,
		LastAttempt: now.Add(-3 * time.Hour),
	}))
	// Stale row whose lockout already expired: prunable.
	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:          models.CanteenLoginKey("south", "10.0.0.2"),
		Attempts:     3,
		LastAttempt:  now.Add(-3 * time.Hour),
		LockoutUntil: &pastUntil,
	}))
	// Active lockout: must survive even with an old last attempt.
	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:          models.CanteenLoginKey("east", "10.0.0.3"),
		Attempts:     3,
		LastAttempt:  now.Add(-3 * time.Hour),
		LockoutUntil: &activeUntil,
	}))
	// Recent row: inside the reset window, must survive.
	require.NoError(t, repo.Upsert(ctx, &models.RateLimitRecord{
		Key:         models.CanteenLoginKey("west", "10.0.0.4"),
		Attempts:    1,
		LastAttempt: now,
	}))

	deleted, err := repo.DeleteExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	got, err := repo.Get(ctx, models.CanteenLoginKey("east", "10.0.0.3"))
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = repo.Get(ctx, models.CanteenLoginKey("west", "10.0.0.4"))
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = repo.Get(ctx, models.CanteenLoginKey("north", "10.0.0.1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
