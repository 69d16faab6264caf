package repositories

import (
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"gorm.io/gorm"
)

// ReplyRepository defines the interface for reply data operations
type ReplyRepository interface {
	CreateReply(reply *models.Reply, flag *models.Flag) error
	GetReplyByID(id uint) (*models.Reply, error)
	ListByThreadID(threadID uint) ([]models.Reply, error)
	ListPendingReplies() ([]models.Reply, error)
}

// PostgresReplyRepository implements ReplyRepository for PostgreSQL
type PostgresReplyRepository struct {
	db *gorm.DB
}

// NewPostgresReplyRepository creates a new PostgresReplyRepository
func NewPostgresReplyRepository(db *gorm.DB) *PostgresReplyRepository {
	return &PostgresReplyRepository{db: db}
}

// CreateReply persists a new reply, inserting a moderation flag in the same
// transaction when the submission pipeline blocked the content
func (r *PostgresReplyRepository) CreateReply(reply *models.Reply, flag *models.Flag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		if flag != nil {
			flag.TargetType = models.TargetReply
			flag.TargetID = reply.ID
			if err := tx.Create(flag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetReplyByID retrieves a reply by ID from PostgreSQL
func (r *PostgresReplyRepository) GetReplyByID(id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.First(&reply, id).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

// ListByThreadID retrieves the visible replies of a thread, oldest first
func (r *PostgresReplyRepository) ListByThreadID(threadID uint) ([]models.Reply, error) {
	var replies []models.Reply
	if err := r.db.Where("thread_id = ? AND is_pending = false", threadID).
		Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// ListPendingReplies retrieves all replies awaiting moderation, oldest first
func (r *PostgresReplyRepository) ListPendingReplies() ([]models.Reply, error) {
	var replies []models.Reply
	if err := r.db.Where("is_pending = true").Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}
