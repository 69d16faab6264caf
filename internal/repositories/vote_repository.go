package repositories

import (
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/moderation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository defines the interface for moderation vote operations
type VoteRepository interface {
	UpsertVote(vote *models.ModerationVote) error
	ListBallots(targetType string, targetID uint) ([]moderation.BallotEntry, error)
}

// PostgresVoteRepository implements VoteRepository for PostgreSQL
type PostgresVoteRepository struct {
	db *gorm.DB
}

// NewPostgresVoteRepository creates a new PostgresVoteRepository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{db: db}
}

// UpsertVote inserts the voter's vote for a target, overwriting their prior
// vote if one exists. The ON CONFLICT clause rides on the unique
// (voter, target) index, so two simultaneous casts from the same voter
// converge on one row rather than two.
func (r *PostgresVoteRepository) UpsertVote(vote *models.ModerationVote) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "voter_id"},
			{Name: "target_type"},
			{Name: "target_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"vote", "reason", "updated_at"}),
	}).Create(vote).Error
}

// ListBallots retrieves the full current vote set for a target, joined with
// voter role and display name for ledger evaluation
func (r *PostgresVoteRepository) ListBallots(targetType string, targetID uint) ([]moderation.BallotEntry, error) {
	var ballots []moderation.BallotEntry
	err := r.db.Model(&models.ModerationVote{}).
		Select("moderation_votes.voter_id, users.full_name AS voter_name, users.role AS voter_role, moderation_votes.vote, moderation_votes.reason, moderation_votes.created_at").
		Joins("JOIN users ON users.id = moderation_votes.voter_id").
		Where("moderation_votes.target_type = ? AND moderation_votes.target_id = ?", targetType, targetID).
		Order("moderation_votes.created_at ASC").
		Scan(&ballots).Error
	if err != nil {
		return nil, err
	}
	return ballots, nil
}
