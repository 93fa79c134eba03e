package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Arihant25/isitopen/internal/auth"
	"github.com/Arihant25/isitopen/internal/models"
	pkgauth "github.com/Arihant25/isitopen/pkg/auth"
)

// SettingsRepository defines the persistence operations for settings
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)
}

// AdminPINSetting is the settings key holding the bcrypt hash of the
// admin PIN.
const AdminPINSetting = "adminPin"

// AdminSession is returned on successful admin PIN verification
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminService implements admin PIN verification and the admin console
// operations behind it.
type AdminService struct {
	settings   SettingsRepository
	canteens   CanteenRepository
	rateLimits *RateLimitService
	tokens     *auth.TokenManager
	initialPIN string
	logger     *slog.Logger
}

// NewAdminService creates a new AdminService. initialPIN seeds the admin
// PIN setting on first use when none exists; empty falls back to the
// built-in default.
func NewAdminService(
	settings SettingsRepository,
	canteens CanteenRepository,
	rateLimits *RateLimitService,
	tokens *auth.TokenManager,
	initialPIN string,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		settings:   settings,
		canteens:   canteens,
		rateLimits: rateLimits,
		tokens:     tokens,
		initialPIN: initialPIN,
		logger:     logger,
	}
}

// EnsurePIN creates the admin PIN setting if it does not exist yet.
func (s *AdminService) EnsurePIN(ctx context.Context) error {
	pin := s.initialPIN
	if pin == "" {
		pin = models.DefaultAdminPIN
	}

	hashed, err := pkgauth.HashPIN(pin)
	if err != nil {
		return err
	}

	created, err := s.settings.SetIfAbsent(ctx, AdminPINSetting, hashed)
	if err != nil {
		return fmt.Errorf("failed to seed admin PIN: %w", err)
	}
	if created {
		s.logger.Info("admin PIN setting created")
	}
	return nil
}

// VerifyPIN checks the candidate against the stored admin PIN hash.
// Returns models.ErrInvalidPIN on mismatch.
func (s *AdminService) VerifyPIN(ctx context.Context, pin string) error {
	hashed, err := s.settings.Get(ctx, AdminPINSetting)
	if errors.Is(err, models.ErrNotFound) {
		// First verification ever: seed, then re-read
		if err := s.EnsurePIN(ctx); err != nil {
			return err
		}
		hashed, err = s.settings.Get(ctx, AdminPINSetting)
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if !pkgauth.CheckPINHash(hashed, pin) {
		return models.ErrInvalidPIN
	}
	return nil
}

// IssueSession returns a signed admin session token after a successful
// PIN verification.
func (s *AdminService) IssueSession() (*AdminSession, error) {
	token, expiresAt, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}
	return &AdminSession{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate accepts either a bearer token or the raw admin PIN.
// Token-first: a valid token short-circuits the store entirely.
func (s *AdminService) Authenticate(ctx context.Context, bearerToken, pin string) error {
	if bearerToken != "" {
		if err := s.tokens.Validate(bearerToken); err == nil {
			return nil
		}
	}
	if pin == "" {
		return models.ErrInvalidPIN
	}
	return s.VerifyPIN(ctx, pin)
}

// ChangePIN rotates the admin PIN after verifying the current one.
func (s *AdminService) ChangePIN(ctx context.Context, currentPIN, newPIN string) error {
	if err := pkgauth.ValidatePIN(newPIN); err != nil {
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	if err := s.VerifyPIN(ctx, currentPIN); err != nil {
		return err
	}

	hashed, err := pkgauth.HashPIN(newPIN)
	if err != nil {
		return err
	}

	if err := s.settings.Set(ctx, AdminPINSetting, hashed); err != nil {
		return fmt.Errorf("failed to update admin PIN: %w", err)
	}

	s.logger.Info("admin PIN updated")
	return nil
}

// ListCanteenPINs returns every canteen with its PIN for the admin
// console. Caller must have authenticated.
func (s *AdminService) ListCanteenPINs(ctx context.Context) ([]models.AdminCanteenPIN, error) {
	canteens, err := s.canteens.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list canteens: %w", err)
	}

	out := make([]models.AdminCanteenPIN, 0, len(canteens))
	for _, c := range canteens {
		out = append(out, models.AdminCanteenPIN{ID: c.ID, Name: c.Name, PIN: c.PIN})
	}
	return out, nil
}

// ChangeCanteenPIN sets a new PIN for one canteen. Caller must have
// authenticated.
func (s *AdminService) ChangeCanteenPIN(ctx context.Context, canteenID, newPIN string) error {
	if err := pkgauth.ValidatePIN(newPIN); err != nil {
		return fmt.Errorf("%w: %v", models.ErrBadRequest, err)
	}

	if err := s.canteens.UpdatePIN(ctx, canteenID, newPIN); err != nil {
		return err
	}

	s.logger.Info("canteen PIN updated", slog.String("canteen_id", canteenID))
	return nil
}

// ListLockouts returns the decoded lockout records for the dashboard,
// with canteen ids resolved to display names.
func (s *AdminService) ListLockouts(ctx context.Context) ([]models.LockedOutEntry, error) {
	canteens, err := s.canteens.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list canteens: %w", err)
	}

	names := make(map[string]string, len(canteens))
	for _, c := range canteens {
		names[c.ID] = c.Name
	}

	return s.rateLimits.ListLockedOut(ctx, names)
}
