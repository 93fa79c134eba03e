package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/repositories"
	"github.com/Arihant25/isitopen/internal/services"
)

// Retention periods for the append-only tables. Votes only matter for
// the current period; analytics keep a season of history.
const (
	voteRetention      = 7 * 24 * time.Hour
	analyticsRetention = 90 * 24 * time.Hour
)

// CleanupManager periodically evicts stale guardrail state and prunes
// expired rows from the database.
type CleanupManager struct {
	rateLimitRepo *repositories.RateLimitRepository
	canteenRepo   *repositories.CanteenRepository
	voteRepo      *repositories.VoteRepository
	analyticsRepo *repositories.AnalyticsRepository
	detector      *services.GuardrailService
	resetWindow   time.Duration
	logger        *slog.Logger
	interval      time.Duration
	stopCh        chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	rateLimitRepo *repositories.RateLimitRepository,
	canteenRepo *repositories.CanteenRepository,
	voteRepo *repositories.VoteRepository,
	analyticsRepo *repositories.AnalyticsRepository,
	detector *services.GuardrailService,
	resetWindow time.Duration,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		rateLimitRepo: rateLimitRepo,
		canteenRepo:   canteenRepo,
		voteRepo:      voteRepo,
		analyticsRepo: analyticsRepo,
		detector:      detector,
		resetWindow:   resetWindow,
		logger:        logger,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now()

	if evicted := cm.detector.Evict(); evicted > 0 {
		cm.logger.Info("guardrail state evicted", slog.Int("entries", evicted))
	}

	cm.prune("rate_limits", func() (int64, error) {
		return cm.rateLimitRepo.DeleteExpired(cleanupCtx, cm.resetWindow)
	})
	cm.prune("status_notes", func() (int64, error) {
		return cm.canteenRepo.ClearExpiredNotes(cleanupCtx, models.NoteExpiry)
	})
	cm.prune("community_votes", func() (int64, error) {
		return cm.voteRepo.DeleteBefore(cleanupCtx, now.Add(-voteRetention))
	})
	cm.prune("analytics_events", func() (int64, error) {
		return cm.analyticsRepo.DeleteBefore(cleanupCtx, now.Add(-analyticsRetention))
	})
}

func (cm *CleanupManager) prune(table string, fn func() (int64, error)) {
	rows, err := fn()
	if err != nil {
		cm.logger.Error("cleanup failed",
			slog.String("table", table),
			slog.Any("error", err))
		return
	}
	if rows > 0 {
		cm.logger.Info("cleanup completed",
			slog.String("table", table),
			slog.Int64("rows", rows))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
