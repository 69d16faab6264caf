package models

import "gorm.io/gorm"

// Target types shared by reactions, votes, flags and audit events
const (
	TargetThread = "thread"
	TargetReply  = "reply"
)

// Reaction types a moderator can place on a target
const (
	ReactionApprove  = "approve"
	ReactionDisagree = "disagree"
	ReactionConcern  = "concern"
)

// Reaction represents a single moderator reaction on a thread or reply.
// The unique index guarantees at most one row per (user, target) pair.
type Reaction struct {
	gorm.Model   `json:"-"`
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       uint   `json:"user_id" gorm:"uniqueIndex:idx_reaction_user_target"`
	TargetType   string `json:"target_type" gorm:"size:10;uniqueIndex:idx_reaction_user_target"` // thread, reply
	TargetID     uint   `json:"target_id" gorm:"uniqueIndex:idx_reaction_user_target"`
	ReactionType string `json:"reaction_type" gorm:"size:20"` // approve, disagree, concern
}

// ReactRequest defines the request body for placing or toggling a reaction
type ReactRequest struct {
	TargetType   string `json:"target_type" validate:"required,oneof=thread reply"`
	TargetID     uint   `json:"target_id" validate:"required"`
	ReactionType string `json:"reaction_type" validate:"required,oneof=approve disagree concern"`
}
