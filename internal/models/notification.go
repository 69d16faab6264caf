package models

import "time"

// Notification types
const (
	NotificationFlaggedPost  = "flagged_post"
	NotificationReply        = "reply"
	NotificationAnnouncement = "announcement"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"` // flagged_post, reply, announcement
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   uint      `json:"related_id,omitempty"` // thread ID, reply ID, etc.
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
