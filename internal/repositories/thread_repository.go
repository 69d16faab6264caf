package repositories

import (
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"gorm.io/gorm"
)

// ThreadFilter narrows a thread listing. Pending threads are always excluded
// from listings; the moderation dashboard reads them through
// ListPendingThreads instead.
type ThreadFilter struct {
	Visibility string // public, teachers_only
	Status     string // open, locked
	Category   string
	Query      string // full-text search over title+body
	Limit      int
}

// ThreadRepository defines the interface for thread data operations
type ThreadRepository interface {
	CreateThread(thread *models.Thread, flag *models.Flag) error
	GetThreadByID(id uint) (*models.Thread, error)
	ListThreads(filter ThreadFilter) ([]models.Thread, error)
	ListPendingThreads() ([]models.Thread, error)
	CountReplies(threadID uint) (int64, error)
	UpdateStatus(id uint, status string) error
	CategoryCounts() (map[string]int64, error)
}

// PostgresThreadRepository implements ThreadRepository for PostgreSQL
type PostgresThreadRepository struct {
	db *gorm.DB
}

// NewPostgresThreadRepository creates a new PostgresThreadRepository
func NewPostgresThreadRepository(db *gorm.DB) *PostgresThreadRepository {
	return &PostgresThreadRepository{db: db}
}

// CreateThread persists a new thread. When the submission pipeline blocked
// the content, the accompanying flag is inserted in the same transaction so
// a failure cannot leave a pending thread with no flag.
func (r *PostgresThreadRepository) CreateThread(thread *models.Thread, flag *models.Flag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		if flag != nil {
			flag.TargetType = models.TargetThread
			flag.TargetID = thread.ID
			if err := tx.Create(flag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetThreadByID retrieves a thread by ID from PostgreSQL
func (r *PostgresThreadRepository) GetThreadByID(id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListThreads retrieves threads matching the filter, newest first
func (r *PostgresThreadRepository) ListThreads(filter ThreadFilter) ([]models.Thread, error) {
	q := r.db.Model(&models.Thread{}).Where("is_pending = false")

	if filter.Visibility != "" {
		q = q.Where("visibility = ?", filter.Visibility)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Query != "" {
		// Postgres full-text search over title and body
		q = q.Where("to_tsvector('english', title || ' ' || body) @@ plainto_tsquery('english', ?)", filter.Query)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var threads []models.Thread
	if err := q.Order("created_at DESC").Limit(limit).Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// ListPendingThreads retrieves all threads awaiting moderation, oldest first
func (r *PostgresThreadRepository) ListPendingThreads() ([]models.Thread, error) {
	var threads []models.Thread
	if err := r.db.Where("is_pending = true").Order("created_at ASC").Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// CountReplies retrieves the number of visible replies in a thread
func (r *PostgresThreadRepository) CountReplies(threadID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Reply{}).Where("thread_id = ? AND is_pending = false", threadID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus transitions a thread between open and locked
func (r *PostgresThreadRepository) UpdateStatus(id uint, status string) error {
	res := r.db.Model(&models.Thread{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CategoryCounts tallies visible teachers_only threads per category for the
// teachers' lounge sidebar
func (r *PostgresThreadRepository) CategoryCounts() (map[string]int64, error) {
	type row struct {
		Category string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&models.Thread{}).
		Select("category, COUNT(*) as count").
		Where("visibility = ? AND is_pending = false AND category <> ''", models.VisibilityTeachersOnly).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}
