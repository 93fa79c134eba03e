package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
	pkgauth "github.com/Arihant25/isitopen/pkg/auth"
)

// CanteenRepository defines the persistence operations for canteens
type CanteenRepository interface {
	List(ctx context.Context) ([]models.Canteen, error)
	GetByID(ctx context.Context, id string) (*models.Canteen, error)
	UpdateStatus(ctx context.Context, id, status string, note *string) (*models.Canteen, error)
	UpdatePIN(ctx context.Context, id, pin string) error
	EnsureSeeded(ctx context.Context, seed []models.Canteen) error
}

// CanteenService implements the student- and owner-facing canteen
// operations. PIN verification itself happens here; the guardrail
// composition around it is the handler's job.
type CanteenService struct {
	repo      CanteenRepository
	analytics *AnalyticsService
	logger    *slog.Logger
	now       func() time.Time
}

// NewCanteenService creates a new CanteenService
func NewCanteenService(repo CanteenRepository, analytics *AnalyticsService, logger *slog.Logger) *CanteenService {
	return &CanteenService{
		repo:      repo,
		analytics: analytics,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns all canteens sorted by name, seeding any missing roster
// entries first. PINs are stripped and expired notes dropped.
func (s *CanteenService) List(ctx context.Context) ([]models.Canteen, error) {
	if err := s.repo.EnsureSeeded(ctx, models.SeedCanteens); err != nil {
		// Seeding failures shouldn't take down the board if rows exist
		s.logger.Error("canteen seeding failed", slog.Any("error", err))
	}

	canteens, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list canteens: %w", err)
	}

	now := s.now()
	public := make([]models.Canteen, 0, len(canteens))
	for i := range canteens {
		public = append(public, canteens[i].Public(now))
	}
	return public, nil
}

// Get returns a single canteen with the PIN stripped.
func (s *CanteenService) Get(ctx context.Context, id string) (*models.Canteen, error) {
	canteen, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := canteen.Public(s.now())
	return &public, nil
}

// VerifyPIN checks the supplied PIN against the canteen's stored PIN.
// Returns models.ErrNotFound for unknown canteens and models.ErrInvalidPIN
// on mismatch.
func (s *CanteenService) VerifyPIN(ctx context.Context, id, pin string) error {
	canteen, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !pkgauth.ComparePIN(canteen.PIN, pin) {
		return models.ErrInvalidPIN
	}
	return nil
}

// UpdateStatus sets a canteen's open/closed state (and optionally its
// note) after the caller has verified the PIN. Emits analytics events for
// the owner dashboard.
func (s *CanteenService) UpdateStatus(ctx context.Context, id, status string, note *string) (*models.Canteen, error) {
	if status != models.StatusOpen && status != models.StatusClosed {
		return nil, fmt.Errorf("%w: status must be %q or %q", models.ErrBadRequest, models.StatusOpen, models.StatusClosed)
	}

	canteen, err := s.repo.UpdateStatus(ctx, id, status, note)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update canteen: %w", err)
	}

	s.analytics.TrackStatusUpdate(ctx, canteen.ID, canteen.Name, status)

	public := canteen.Public(s.now())
	return &public, nil
}
