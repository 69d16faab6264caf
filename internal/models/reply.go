package models

import "gorm.io/gorm"

// Reply represents a reply within a thread
type Reply struct {
	gorm.Model  `json:"-"`
	ID          uint         `json:"id" gorm:"primaryKey"`
	ThreadID    uint         `json:"thread_id" gorm:"index"`
	AuthorID    uint         `json:"author_id" gorm:"index"`
	Body        string       `json:"body"`
	IsAnonymous bool         `json:"is_anonymous" gorm:"default:false"`
	IsPending   bool         `json:"is_pending" gorm:"default:false;index"`
	Attachments []Attachment `json:"attachments,omitempty" gorm:"serializer:json"`
}

// CreateReplyRequest defines the request body for replying to a thread
type CreateReplyRequest struct {
	Body        string       `json:"body" validate:"required,min=1,max=10000"`
	IsAnonymous bool         `json:"is_anonymous"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ReplyResponse is a reply decorated with author display data
type ReplyResponse struct {
	Reply
	AuthorName string `json:"author_name"`
}
