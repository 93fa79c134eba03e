package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Arihant25/isitopen/internal/auth"
	"github.com/Arihant25/isitopen/internal/handlers"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"
	pkglogger "github.com/Arihant25/isitopen/pkg/logger"
)

// In-memory repositories backing full service wiring, so handler tests
// exercise the real guardrail composition end to end.

type memRateLimitRepo struct {
	records map[string]*models.RateLimitRecord
}

func (m *memRateLimitRepo) Get(ctx context.Context, key string) (*models.RateLimitRecord, error) {
	record, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (m *memRateLimitRepo) Upsert(ctx context.Context, record *models.RateLimitRecord) error {
	copied := *record
	m.records[record.Key] = &copied
	return nil
}

func (m *memRateLimitRepo) Delete(ctx context.Context, key string) error {
	delete(m.records, key)
	return nil
}

func (m *memRateLimitRepo) ListWithLockouts(ctx context.Context) ([]models.RateLimitRecord, error) {
	var out []models.RateLimitRecord
	for _, record := range m.records {
		if record.LockoutUntil != nil {
			out = append(out, *record)
		}
	}
	return out, nil
}

type memCanteenRepo struct {
	canteens map[string]*models.Canteen
}

func (m *memCanteenRepo) List(ctx context.Context) ([]models.Canteen, error) {
	out := make([]models.Canteen, 0, len(m.canteens))
	for _, c := range m.canteens {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCanteenRepo) GetByID(ctx context.Context, id string) (*models.Canteen, error) {
	c, ok := m.canteens[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *memCanteenRepo) UpdateStatus(ctx context.Context, id, status string, note *string) (*models.Canteen, error) {
	c, ok := m.canteens[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	now := time.Now()
	c.Status = status
	c.LastUpdated = now
	if note != nil && *note != "" {
		c.Note = note
		c.NoteUpdatedAt = &now
	}
	copied := *c
	return &copied, nil
}

func (m *memCanteenRepo) UpdatePIN(ctx context.Context, id, pin string) error {
	c, ok := m.canteens[id]
	if !ok {
		return models.ErrNotFound
	}
	c.PIN = pin
	return nil
}

func (m *memCanteenRepo) EnsureSeeded(ctx context.Context, seed []models.Canteen) error {
	for i := range seed {
		if _, ok := m.canteens[seed[i].ID]; !ok {
			c := seed[i]
			m.canteens[c.ID] = &c
		}
	}
	return nil
}

type memSettingsRepo struct {
	values map[string]string
}

func (m *memSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", models.ErrNotFound
	}
	return value, nil
}

func (m *memSettingsRepo) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memSettingsRepo) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

type memVoteRepo struct {
	votes []models.CommunityVote
}

func (m *memVoteRepo) Insert(ctx context.Context, vote *models.CommunityVote) error {
	m.votes = append(m.votes, *vote)
	return nil
}

func (m *memVoteRepo) SummarizePeriod(ctx context.Context, periodStart time.Time, canteenID string) ([]models.VoteSummary, error) {
	tallies := make(map[string]*models.VoteSummary)
	for _, v := range m.votes {
		if !v.PeriodStart.Equal(periodStart) {
			continue
		}
		if canteenID != "" && v.CanteenID != canteenID {
			continue
		}
		s, ok := tallies[v.CanteenID]
		if !ok {
			s = &models.VoteSummary{CanteenID: v.CanteenID}
			tallies[v.CanteenID] = s
		}
		if v.VoteType == models.VoteCorrect {
			s.CorrectVotes++
		} else {
			s.IncorrectVotes++
		}
	}
	out := make([]models.VoteSummary, 0, len(tallies))
	for _, s := range tallies {
		out = append(out, *s)
	}
	return out, nil
}

type memAnalyticsRepo struct {
	events []models.AnalyticsEvent
}

func (m *memAnalyticsRepo) Insert(ctx context.Context, event *models.AnalyticsEvent) error {
	m.events = append(m.events, *event)
	return nil
}

func (m *memAnalyticsRepo) CountPageViews(ctx context.Context, start, end time.Time) (int, error) {
	count := 0
	for _, e := range m.events {
		if e.EventType == models.EventPageView {
			count++
		}
	}
	return count, nil
}

func (m *memAnalyticsRepo) PageViewsByDay(ctx context.Context, start, end time.Time) ([]models.DailyCount, error) {
	return nil, nil
}

// fixture wires the whole handler stack over in-memory storage
type fixture struct {
	rateLimits *memRateLimitRepo
	canteens   *memCanteenRepo
	settings   *memSettingsRepo
	analytics  *memAnalyticsRepo

	detector *services.GuardrailService
	limiter  *services.RateLimitService

	canteenHandler   *handlers.CanteenHandler
	adminHandler     *handlers.AdminHandler
	voteHandler      *handlers.VoteHandler
	analyticsHandler *handlers.AnalyticsHandler
}

func newFixture(canteens ...models.Canteen) *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		rateLimits: &memRateLimitRepo{records: make(map[string]*models.RateLimitRecord)},
		canteens:   &memCanteenRepo{canteens: make(map[string]*models.Canteen)},
		settings:   &memSettingsRepo{values: make(map[string]string)},
		analytics:  &memAnalyticsRepo{},
	}
	for i := range canteens {
		c := canteens[i]
		f.canteens.canteens[c.ID] = &c
	}

	f.limiter = services.NewRateLimitService(f.rateLimits, services.RateLimitConfig{
		MaxAttempts:     3,
		LockoutDuration: 1 * time.Hour,
		AttemptReset:    1 * time.Hour,
	}, logger)

	f.detector = services.NewGuardrailService(services.GuardrailConfig{
		Window:            60 * time.Second,
		SoftLimit:         5,
		HardLimit:         10,
		HardBlockDuration: 1 * time.Hour,
		EnumerationWindow: 3 * time.Minute,
	}, logger)

	audit := pkglogger.NewAuditLogger(logger)
	gate := handlers.NewPINGate(f.detector, f.limiter, audit)

	analyticsService := services.NewAnalyticsService(f.analytics, logger)
	canteenService := services.NewCanteenService(f.canteens, analyticsService, logger)
	voteService := services.NewVoteService(&memVoteRepo{})
	tokens := auth.NewTokenManager("handler-test-secret-32-chars-min!", 12*time.Hour)
	adminService := services.NewAdminService(f.settings, f.canteens, f.limiter, tokens, "", logger)

	f.canteenHandler = handlers.NewCanteenHandler(canteenService, analyticsService, gate)
	f.adminHandler = handlers.NewAdminHandler(adminService, gate, audit)
	f.voteHandler = handlers.NewVoteHandler(voteService)
	f.analyticsHandler = handlers.NewAnalyticsHandler(analyticsService)

	return f
}
