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

// MockCanteenRepository implements CanteenRepository for testing
type MockCanteenRepository struct {
	canteens map[string]*models.Canteen
	seeded   bool
}

func NewMockCanteenRepository(canteens ...models.Canteen) *MockCanteenRepository {
	repo := &MockCanteenRepository{canteens: make(map[string]*models.Canteen)}
	for i := range canteens {
		c := canteens[i]
		repo.canteens[c.ID] = &c
	}
	return repo
}

func (m *MockCanteenRepository) List(ctx context.Context) ([]models.Canteen, error) {
	out := make([]models.Canteen, 0, len(m.canteens))
	for _, c := range m.canteens {
		out = append(out, *c)
	}
	return out, nil
}

func (m *MockCanteenRepository) GetByID(ctx context.Context, id string) (*models.Canteen, error) {
	c, ok := m.canteens[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *MockCanteenRepository) UpdateStatus(ctx context.Context, id, status string, note *string) (*models.Canteen, error) {
	c, ok := m.canteens[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	now := time.Now()
	c.Status = status
	c.LastUpdated = now
	if note != nil {
		if *note == "" {
			c.Note = nil
			c.NoteUpdatedAt = nil
		} else {
			c.Note = note
			c.NoteUpdatedAt = &now
		}
	}
	copied := *c
	return &copied, nil
}

func (m *MockCanteenRepository) UpdatePIN(ctx context.Context, id, pin string) error {
	c, ok := m.canteens[id]
	if !ok {
		return models.ErrNotFound
	}
	c.PIN = pin
	return nil
}

func (m *MockCanteenRepository) EnsureSeeded(ctx context.Context, seed []models.Canteen) error {
	m.seeded = true
	for i := range seed {
		if _, ok := m.canteens[seed[i].ID]; !ok {
			c := seed[i]
			m.canteens[c.ID] = &c
		}
	}
	return nil
}

func newTestCanteenService(repo services.CanteenRepository) *services.CanteenService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analytics := services.NewAnalyticsService(NewMockAnalyticsRepository(), logger)
	return services.NewCanteenService(repo, analytics, logger)
}

func TestCanteenList_SeedsAndStripsPINs(t *testing.T) {
	repo := NewMockCanteenRepository()
	service := newTestCanteenService(repo)

	canteens, err := service.List(context.Background())

	require.NoError(t, err)
	assert.True(t, repo.seeded)
	assert.Len(t, canteens, len(models.SeedCanteens))
	for _, c := range canteens {
		assert.Empty(t, c.PIN)
	}
}

func TestCanteenList_DropsExpiredNotes(t *testing.T) {
	note := "out of gas, back by 6"
	fresh := time.Now().Add(-1 * time.Hour)
	stale := time.Now().Add(-13 * time.Hour)

	repo := NewMockCanteenRepository(
		models.Canteen{ID: "a", Name: "A", Status: models.StatusOpen, PIN: "1111", Note: &note, NoteUpdatedAt: &fresh},
		models.Canteen{ID: "b", Name: "B", Status: models.StatusOpen, PIN: "2222", Note: &note, NoteUpdatedAt: &stale},
	)
	service := newTestCanteenService(repo)

	canteens, err := service.List(context.Background())
	require.NoError(t, err)

	byID := make(map[string]models.Canteen)
	for _, c := range canteens {
		byID[c.ID] = c
	}
	assert.NotNil(t, byID["a"].Note)
	assert.Nil(t, byID["b"].Note)
}

func TestCanteenVerifyPIN(t *testing.T) {
	repo := NewMockCanteenRepository(
		models.Canteen{ID: "north", Name: "North Mess", Status: models.StatusClosed, PIN: "4821"},
	)
	service := newTestCanteenService(repo)
	ctx := context.Background()

	assert.NoError(t, service.VerifyPIN(ctx, "north", "4821"))
	assert.ErrorIs(t, service.VerifyPIN(ctx, "north", "0000"), models.ErrInvalidPIN)
	assert.ErrorIs(t, service.VerifyPIN(ctx, "ghost", "4821"), models.ErrNotFound)
}

func TestCanteenUpdateStatus(t *testing.T) {
	repo := NewMockCanteenRepository(
		models.Canteen{ID: "north", Name: "North Mess", Status: models.StatusClosed, PIN: "4821"},
	)
	service := newTestCanteenService(repo)
	ctx := context.Background()

	note := "serving till 9"
	updated, err := service.UpdateStatus(ctx, "north", models.StatusOpen, &note)

	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, updated.Status)
	require.NotNil(t, updated.Note)
	assert.Equal(t, note, *updated.Note)
	assert.Empty(t, updated.PIN)
}

func TestCanteenUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	repo := NewMockCanteenRepository(
		models.Canteen{ID: "north", Name: "North Mess", Status: models.StatusClosed, PIN: "4821"},
	)
	service := newTestCanteenService(repo)

	_, err := service.UpdateStatus(context.Background(), "north", "maybe", nil)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = service.UpdateStatus(context.Background(), "ghost", models.StatusOpen, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
