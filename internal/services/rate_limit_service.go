package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
)

// RateLimitRepository defines the persistence operations the limiter
// needs. The Postgres implementation lives in internal/repositories.
type RateLimitRepository interface {
	Get(ctx context.Context, key string) (*models.RateLimitRecord, error)
	Upsert(ctx context.Context, record *models.RateLimitRecord) error
	Delete(ctx context.Context, key string) error
	ListWithLockouts(ctx context.Context) ([]models.RateLimitRecord, error)
}

// RateLimitConfig holds the limiter thresholds
type RateLimitConfig struct {
	MaxAttempts     int           // failures before a lockout is imposed
	LockoutDuration time.Duration // how long a lockout lasts
	AttemptReset    time.Duration // idle time after which the count restarts
}

// Decision is the outcome of a limit check
type Decision struct {
	Allowed   bool
	Remaining time.Duration // time left on an active lockout
}

// RateLimitService is the durable, cross-request gate for PIN attempts.
// It is the authoritative layer: the in-memory detector in front of it is
// fast but process-local.
//
// Store errors fail closed. A dead store must not turn into an open door
// for PIN guessing, so callers reject the request instead of skipping the
// check.
type RateLimitService struct {
	repo   RateLimitRepository
	config RateLimitConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(repo RateLimitRepository, config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		repo:   repo,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *RateLimitService) SetClock(now func() time.Time) {
	s.now = now
}

// LockoutDuration exposes the configured lockout length, for response
// messages on the attempt that trips the lockout.
func (s *RateLimitService) LockoutDuration() time.Duration {
	return s.config.LockoutDuration
}

// CheckLimit reports whether an attempt against key may proceed. Only an
// active lockout blocks; an elevated-but-under-threshold count does not.
// Expired lockouts and stale counts are cleared on read.
func (s *RateLimitService) CheckLimit(ctx context.Context, key string) (Decision, error) {
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Error("rate limit check failed, failing closed",
			slog.String("key", key),
			slog.Any("error", err))
		return Decision{}, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	if record == nil {
		return Decision{Allowed: true}, nil
	}

	now := s.now()

	if record.LockedOut(now) {
		return Decision{Allowed: false, Remaining: record.LockoutUntil.Sub(now)}, nil
	}

	// Lockout passed, or the count went stale with no lockout: zero the
	// record so the next failure starts a fresh count.
	if record.LockoutUntil != nil || now.Sub(record.LastAttempt) > s.config.AttemptReset {
		record.Attempts = 0
		record.LockoutUntil = nil
		if err := s.repo.Upsert(ctx, record); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
	}

	return Decision{Allowed: true}, nil
}

// RecordAttempt updates the record for key after a credential check.
// Success deletes the record entirely. A failure increments the count,
// restarting at 1 when the previous failure is older than the reset
// window, and imposes a lockout once the count reaches MaxAttempts.
// Returns true when this failure triggered a lockout.
func (s *RateLimitService) RecordAttempt(ctx context.Context, key string, success bool) (bool, error) {
	if success {
		if err := s.repo.Delete(ctx, key); err != nil {
			return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
		return false, nil
	}

	now := s.now()

	record, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	attempts := 1
	if record != nil && now.Sub(record.LastAttempt) <= s.config.AttemptReset {
		attempts = record.Attempts + 1
	}

	updated := &models.RateLimitRecord{
		Key:         key,
		Attempts:    attempts,
		LastAttempt: now,
	}

	locked := false
	if attempts >= s.config.MaxAttempts {
		until := now.Add(s.config.LockoutDuration)
		updated.LockoutUntil = &until
		locked = true

		s.logger.Warn("lockout imposed",
			slog.String("key", key),
			slog.Int("attempts", attempts),
			slog.Duration("lockout", s.config.LockoutDuration))
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		return false, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	return locked, nil
}

// ListLockedOut returns decoded lockout records for the admin dashboard,
// sorted currently-locked first, then by most recent attempt.
func (s *RateLimitService) ListLockedOut(ctx context.Context, canteenNames map[string]string) ([]models.LockedOutEntry, error) {
	records, err := s.repo.ListWithLockouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	now := s.now()

	entries := make([]models.LockedOutEntry, 0, len(records))
	for _, record := range records {
		entry := models.LockedOutEntry{
			IP:              "Unknown",
			Page:            "Unknown",
			Attempts:        record.Attempts,
			LastAttempt:     record.LastAttempt,
			LockoutUntil:    record.LockoutUntil,
			CurrentlyLocked: record.LockedOut(now),
		}

		action, canteenID, identifier := models.ParseRateLimitKey(record.Key)
		switch action {
		case models.KeyAdminLogin:
			entry.Page = "Admin Login"
			entry.IP = identifier
		case models.KeyAdminPINChange:
			entry.Page = "Admin PIN Change"
			entry.IP = identifier
		case models.KeyAdminGetCanteens, models.KeyAdminCanteenPINChange:
			entry.Page = "Admin Console"
			entry.IP = identifier
		case models.KeyCanteenLogin:
			entry.CanteenID = canteenID
			entry.CanteenName = canteenNames[canteenID]
			if entry.CanteenName == "" {
				entry.CanteenName = canteenID
			}
			entry.Page = entry.CanteenName
			entry.IP = identifier
		}

		entries = append(entries, entry)
	}

	// Locked entries first, then most recent attempts
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CurrentlyLocked != entries[j].CurrentlyLocked {
			return entries[i].CurrentlyLocked
		}
		return entries[i].LastAttempt.After(entries[j].LastAttempt)
	})

	return entries, nil
}
