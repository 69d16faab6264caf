package models

import "gorm.io/gorm"

// Visibility and status values for threads
const (
	VisibilityPublic       = "public"
	VisibilityTeachersOnly = "teachers_only"

	StatusOpen   = "open"
	StatusLocked = "locked"
)

// Teachers' lounge categories
const (
	CategoryCollaboration = "collaboration"
	CategoryReview        = "review"
	CategoryPolicy        = "policy"
	CategoryAnnouncements = "announcements"
)

// Attachment describes a file stored in the attachment bucket and linked to
// a thread or reply.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// Thread represents a discussion thread
type Thread struct {
	gorm.Model  `json:"-"`
	ID          uint         `json:"id" gorm:"primaryKey"`
	AuthorID    uint         `json:"author_id" gorm:"index"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	IsAnonymous bool         `json:"is_anonymous" gorm:"default:false"`
	Visibility  string       `json:"visibility" gorm:"size:20;default:public;index"`  // public, teachers_only
	Status      string       `json:"status" gorm:"size:20;default:open;index"`        // open, locked
	Category    string       `json:"category,omitempty" gorm:"size:30;index"`         // teachers_only threads: collaboration, review, policy, announcements
	IsPending   bool         `json:"is_pending" gorm:"default:false;index"`           // held back until moderation resolves
	Attachments []Attachment `json:"attachments,omitempty" gorm:"serializer:json"`
	Replies     []Reply      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// CreateThreadRequest defines the request body for creating a new thread
type CreateThreadRequest struct {
	Title       string       `json:"title" validate:"required,min=1,max=200"`
	Body        string       `json:"body" validate:"required,min=1,max=10000"`
	IsAnonymous bool         `json:"is_anonymous"`
	Visibility  string       `json:"visibility,omitempty" validate:"omitempty,oneof=public teachers_only"`
	Category    string       `json:"category,omitempty" validate:"omitempty,oneof=collaboration review policy announcements"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ThreadResponse is a thread decorated with author display data for listings
type ThreadResponse struct {
	Thread
	AuthorName string `json:"author_name"`
	ReplyCount int64  `json:"reply_count"`
}
