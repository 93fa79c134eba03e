package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
)

// VoteRepository defines the persistence operations for community votes
type VoteRepository interface {
	Insert(ctx context.Context, vote *models.CommunityVote) error
	SummarizePeriod(ctx context.Context, periodStart time.Time, canteenID string) ([]models.VoteSummary, error)
}

// PeriodVotes is the current period's tallies for all canteens
type PeriodVotes struct {
	PeriodStart time.Time                     `json:"periodStart"`
	Votes       map[string]models.VoteSummary `json:"votes"`
}

// VoteService implements the community staleness-voting mechanism. Votes
// bucket into 12-hour UTC periods so each morning and evening starts with
// a clean slate.
type VoteService struct {
	repo VoteRepository
	now  func() time.Time
}

// NewVoteService creates a new VoteService
func NewVoteService(repo VoteRepository) *VoteService {
	return &VoteService{repo: repo, now: time.Now}
}

// Submit records a vote and returns the canteen's updated tallies for the
// current period.
func (s *VoteService) Submit(ctx context.Context, canteenID, voteType string) (*models.VoteSummary, error) {
	if voteType != models.VoteCorrect && voteType != models.VoteIncorrect {
		return nil, fmt.Errorf("%w: voteType must be %q or %q", models.ErrBadRequest, models.VoteCorrect, models.VoteIncorrect)
	}

	periodStart := models.CurrentPeriodStart(s.now())

	vote := &models.CommunityVote{
		CanteenID:   canteenID,
		VoteType:    voteType,
		PeriodStart: periodStart,
	}
	if err := s.repo.Insert(ctx, vote); err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	summaries, err := s.repo.SummarizePeriod(ctx, periodStart, canteenID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize votes: %w", err)
	}

	summary := models.VoteSummary{CanteenID: canteenID}
	if len(summaries) > 0 {
		summary = summaries[0]
	}
	return &summary, nil
}

// CurrentPeriod returns tallies for the current period, optionally
// filtered to one canteen.
func (s *VoteService) CurrentPeriod(ctx context.Context, canteenID string) (*PeriodVotes, error) {
	periodStart := models.CurrentPeriodStart(s.now())

	summaries, err := s.repo.SummarizePeriod(ctx, periodStart, canteenID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize votes: %w", err)
	}

	votes := make(map[string]models.VoteSummary, len(summaries))
	for _, summary := range summaries {
		votes[summary.CanteenID] = summary
	}

	return &PeriodVotes{PeriodStart: periodStart, Votes: votes}, nil
}
