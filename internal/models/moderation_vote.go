package models

import "gorm.io/gorm"

// Vote values a moderator can cast on a flagged target
const (
	VoteKeep   = "keep"
	VoteEdit   = "edit"
	VoteDelete = "delete"
)

// ModerationVote represents one moderator's current vote on a target.
// The unique index guarantees at most one row per (voter, target) pair;
// a repeat vote from the same voter upserts instead of accumulating.
type ModerationVote struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	VoterID    uint   `json:"voter_id" gorm:"uniqueIndex:idx_vote_voter_target"`
	TargetType string `json:"target_type" gorm:"size:10;uniqueIndex:idx_vote_voter_target"` // thread, reply
	TargetID   uint   `json:"target_id" gorm:"uniqueIndex:idx_vote_voter_target"`
	Vote       string `json:"vote" gorm:"size:10"` // keep, edit, delete
	Reason     string `json:"reason,omitempty"`
}

// CastVoteRequest defines the request body for casting a moderation vote
type CastVoteRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=thread reply"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Vote       string `json:"vote" validate:"required,oneof=keep edit delete"`
	Reason     string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RejectRequest defines the request body for the admin direct-reject path
type RejectRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=thread reply"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,min=1,max=500"`
}
