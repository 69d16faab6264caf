package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moderation actions recorded in the audit log
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionDelete  = "delete"
	ActionLock    = "lock"
	ActionUnlock  = "unlock"
)

// ModerationEvent is one immutable audit row stored in MongoDB. Events are
// append-only; nothing in the application updates or deletes them.
type ModerationEvent struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ActorID    uint               `json:"actor_id" bson:"actor_id"`
	Action     string             `json:"action" bson:"action"` // approve, reject, delete, lock, unlock
	TargetType string             `json:"target_type" bson:"target_type"`
	TargetID   uint               `json:"target_id" bson:"target_id"`
	Reason     string             `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
