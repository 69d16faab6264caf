package repositories

import (
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	GetReaction(userID uint, targetType string, targetID uint) (*models.Reaction, error)
	CreateReaction(reaction *models.Reaction) error
	UpdateReactionType(id uint, reactionType string) error
	DeleteReaction(id uint) error
	ListByTarget(targetType string, targetID uint) ([]models.Reaction, error)
	CountsByTarget(targetType string, targetID uint) (map[string]int64, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// GetReaction retrieves the user's existing reaction on a target, if any
func (r *PostgresReactionRepository) GetReaction(userID uint, targetType string, targetID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CreateReaction creates a new reaction in PostgreSQL. The unique
// (user, target) index rejects a concurrent duplicate insert.
func (r *PostgresReactionRepository) CreateReaction(reaction *models.Reaction) error {
	return r.db.Create(reaction).Error
}

// UpdateReactionType switches an existing reaction to a different type
func (r *PostgresReactionRepository) UpdateReactionType(id uint, reactionType string) error {
	return r.db.Model(&models.Reaction{}).Where("id = ?", id).Update("reaction_type", reactionType).Error
}

// DeleteReaction removes a reaction (the toggle-off path)
func (r *PostgresReactionRepository) DeleteReaction(id uint) error {
	return r.db.Unscoped().Delete(&models.Reaction{}, id).Error
}

// ListByTarget retrieves all reactions on a target
func (r *PostgresReactionRepository) ListByTarget(targetType string, targetID uint) ([]models.Reaction, error) {
	var reactions []models.Reaction
	if err := r.db.Where("target_type = ? AND target_id = ?", targetType, targetID).Find(&reactions).Error; err != nil {
		return nil, err
	}
	return reactions, nil
}

// CountsByTarget tallies reactions on a target by type
func (r *PostgresReactionRepository) CountsByTarget(targetType string, targetID uint) (map[string]int64, error) {
	type row struct {
		ReactionType string
		Count        int64
	}
	var rows []row
	err := r.db.Model(&models.Reaction{}).
		Select("reaction_type, COUNT(*) as count").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Group("reaction_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{
		models.ReactionApprove:  0,
		models.ReactionDisagree: 0,
		models.ReactionConcern:  0,
	}
	for _, r := range rows {
		counts[r.ReactionType] = r.Count
	}
	return counts, nil
}
