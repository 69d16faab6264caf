package repositories

import (
	"context"
	"time"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"gorm.io/gorm"
)

// FlagRepository defines the interface for moderation flag operations.
// Flags are created inside the thread/reply submission transactions, so
// there is no standalone create here.
type FlagRepository interface {
	GetOpenFlag(targetType string, targetID uint) (*models.Flag, error)
	ListOpenFlags() ([]models.Flag, error)
	ResolveFlags(ctx context.Context, targetType string, targetID uint, resolverID uint, resolution string) error
}

// PostgresFlagRepository implements FlagRepository for PostgreSQL
type PostgresFlagRepository struct {
	db *gorm.DB
}

// NewPostgresFlagRepository creates a new PostgresFlagRepository
func NewPostgresFlagRepository(db *gorm.DB) *PostgresFlagRepository {
	return &PostgresFlagRepository{db: db}
}

// GetOpenFlag retrieves the unresolved flag for a target, if any
func (r *PostgresFlagRepository) GetOpenFlag(targetType string, targetID uint) (*models.Flag, error) {
	var flag models.Flag
	err := r.db.Where("target_type = ? AND target_id = ? AND resolution = ''", targetType, targetID).
		First(&flag).Error
	if err != nil {
		return nil, err
	}
	return &flag, nil
}

// ListOpenFlags retrieves all unresolved flags, oldest first
func (r *PostgresFlagRepository) ListOpenFlags() ([]models.Flag, error) {
	var flags []models.Flag
	if err := r.db.Where("resolution = ''").Order("created_at ASC").Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

// ResolveFlags stamps resolver identity, outcome and timestamp on every open
// flag for the target. Resolved flags are never re-stamped.
func (r *PostgresFlagRepository) ResolveFlags(ctx context.Context, targetType string, targetID uint, resolverID uint, resolution string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Flag{}).
		Where("target_type = ? AND target_id = ? AND resolution = ''", targetType, targetID).
		Updates(map[string]interface{}{
			"resolution":  resolution,
			"resolved_by": resolverID,
			"resolved_at": &now,
		}).Error
}
