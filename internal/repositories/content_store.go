package repositories

import (
	"context"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"gorm.io/gorm"
)

// GormContentStore gives the decision executor conditional mutations over
// threads and replies. Both operations report whether a row was actually
// touched, so concurrent double-triggers of the same decision converge on a
// single effect instead of erroring.
type GormContentStore struct {
	db *gorm.DB
}

// NewGormContentStore creates a new GormContentStore
func NewGormContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

func contentModel(targetType string) interface{} {
	if targetType == models.TargetReply {
		return &models.Reply{}
	}
	return &models.Thread{}
}

// ClearPending flips is_pending off for the target. The WHERE clause makes
// the update conditional: a target that is absent or already approved
// reports false.
func (s *GormContentStore) ClearPending(ctx context.Context, targetType string, targetID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(contentModel(targetType)).
		Where("id = ? AND is_pending = true", targetID).
		Update("is_pending", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteContent removes the target row. Deleting a thread cascades to its
// replies through the foreign-key constraint. An already-deleted target
// reports false.
func (s *GormContentStore) DeleteContent(ctx context.Context, targetType string, targetID uint) (bool, error) {
	res := s.db.WithContext(ctx).Unscoped().Where("id = ?", targetID).Delete(contentModel(targetType))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
