package repositories

import (
	"context"
	"time"

	"github.com/Arihant25/isitopen/internal/database"
	"github.com/Arihant25/isitopen/internal/models"
	"github.com/google/uuid"
)

// VoteRepository handles database operations for community votes
type VoteRepository struct {
	db *database.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *database.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Insert records a vote.
func (r *VoteRepository) Insert(ctx context.Context, vote *models.CommunityVote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}

	query := `
		INSERT INTO community_votes (id, canteen_id, vote_type, created_at, period_start)
		VALUES ($1, $2, $3, NOW(), $4)
	`

	_, err := r.db.Pool.Exec(ctx, query, vote.ID, vote.CanteenID, vote.VoteType, vote.PeriodStart)
	return database.MapPostgresError(err)
}

// SummarizePeriod aggregates correct/incorrect counts per canteen for
// votes at or after periodStart. Passing canteenID == "" summarizes all
// canteens.
func (r *VoteRepository) SummarizePeriod(ctx context.Context, periodStart time.Time, canteenID string) ([]models.VoteSummary, error) {
	query := `
		SELECT canteen_id,
		       COUNT(*) FILTER (WHERE vote_type = 'correct') AS correct_votes,
		       COUNT(*) FILTER (WHERE vote_type = 'incorrect') AS incorrect_votes
		FROM community_votes
		WHERE period_start >= $1
		  AND ($2 = '' OR canteen_id = $2)
		GROUP BY canteen_id
	`

	rows, err := r.db.Pool.Query(ctx, query, periodStart, canteenID)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	var summaries []models.VoteSummary
	for rows.Next() {
		var s models.VoteSummary
		if err := rows.Scan(&s.CanteenID, &s.CorrectVotes, &s.IncorrectVotes); err != nil {
			return nil, database.MapPostgresError(err)
		}
		summaries = append(summaries, s)
	}

	return summaries, database.MapPostgresError(rows.Err())
}

// DeleteBefore removes votes from periods older than the cutoff.
func (r *VoteRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM community_votes WHERE period_start < $1`

	tag, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
