package models

import (
	"time"

	"gorm.io/gorm"
)

// Flag resolutions
const (
	ResolutionApproved = "approved"
	ResolutionRejected = "rejected"
)

// Flag marks a content item as requiring moderation attention. Resolution
// stays empty until a decision resolves it.
type Flag struct {
	gorm.Model `json:"-"`
	ID         uint       `json:"id" gorm:"primaryKey"`
	TargetType string     `json:"target_type" gorm:"size:10;index:idx_flag_target"` // thread, reply
	TargetID   uint       `json:"target_id" gorm:"index:idx_flag_target"`
	Reason     string     `json:"reason"` // e.g. off_topic:dating
	Resolution string     `json:"resolution,omitempty" gorm:"size:20"`
	ResolvedBy uint       `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
