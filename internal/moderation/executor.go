package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

var (
	// ErrNotModerator is returned when the actor's role does not permit moderation.
	ErrNotModerator = errors.New("moderation: actor is not a teacher or admin")
	// ErrAdminOnly is returned when a non-admin attempts the direct-reject path.
	ErrAdminOnly = errors.New("moderation: direct rejection requires the admin role")
	// ErrNoExecution is returned when a decision has no automatic execution.
	ErrNoExecution = errors.New("moderation: decision requires explicit human follow-up")
)

// ContentStore mutates flagged content on behalf of the executor. Both
// methods must be conditional at the storage layer: a target that is already
// resolved or already gone reports false instead of failing, which keeps
// concurrent double-triggers from corrupting state.
type ContentStore interface {
	// ClearPending flips is_pending off. Returns false if the target was
	// absent or no longer pending.
	ClearPending(ctx context.Context, targetType string, targetID uint) (bool, error)
	// DeleteContent removes the target row (a thread takes its replies with
	// it). Returns false if the target was already gone.
	DeleteContent(ctx context.Context, targetType string, targetID uint) (bool, error)
}

// FlagStore resolves the open flags attached to a target.
type FlagStore interface {
	ResolveFlags(ctx context.Context, targetType string, targetID uint, resolverID uint, resolution string) error
}

// EventRecorder appends to the immutable moderation audit log.
type EventRecorder interface {
	RecordEvent(ctx context.Context, event *models.ModerationEvent) error
}

// Executor applies a moderation decision to a target: it mutates the content
// row, resolves any open flags, and appends an audit event. Every resolution
// path, whether reached through voting consensus or an admin acting directly,
// goes through here so flag resolution can never be skipped.
type Executor struct {
	Content ContentStore
	Flags   FlagStore
	Events  EventRecorder
}

// NewExecutor creates an Executor over the given stores.
func NewExecutor(content ContentStore, flags FlagStore, events EventRecorder) *Executor {
	return &Executor{Content: content, Flags: flags, Events: events}
}

// Resolve applies a majority decision. Only keep and delete execute: keep
// clears the pending flag and approves open flags, delete removes the content
// and rejects them. An edit decision is a signal for human follow-up and is
// never executed automatically; callers receive ErrNoExecution.
//
// Resolving a target that is already resolved or already deleted is a no-op.
func (e *Executor) Resolve(ctx context.Context, actorID uint, actorRole, targetType string, targetID uint, decision, reason string) error {
	if actorRole != models.RoleTeacher && actorRole != models.RoleAdmin {
		return ErrNotModerator
	}

	switch decision {
	case models.VoteKeep:
		return e.approve(ctx, actorID, targetType, targetID, reason)
	case models.VoteDelete:
		return e.remove(ctx, actorID, targetType, targetID, models.ActionDelete, reason)
	default:
		return ErrNoExecution
	}
}

// Reject is the admin direct-reject path. It removes the content like a
// delete decision but records the audit action as "reject".
func (e *Executor) Reject(ctx context.Context, actorID uint, actorRole, targetType string, targetID uint, reason string) error {
	if actorRole != models.RoleAdmin {
		return ErrAdminOnly
	}
	return e.remove(ctx, actorID, targetType, targetID, models.ActionReject, reason)
}

func (e *Executor) approve(ctx context.Context, actorID uint, targetType string, targetID uint, reason string) error {
	cleared, err := e.Content.ClearPending(ctx, targetType, targetID)
	if err != nil {
		return err
	}
	if !cleared {
		// Already approved or gone; nothing left to do.
		return nil
	}

	if err := e.Flags.ResolveFlags(ctx, targetType, targetID, actorID, models.ResolutionApproved); err != nil {
		return err
	}

	return e.Events.RecordEvent(ctx, &models.ModerationEvent{
		ActorID:    actorID,
		Action:     models.ActionApprove,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	})
}

func (e *Executor) remove(ctx context.Context, actorID uint, targetType string, targetID uint, action, reason string) error {
	deleted, err := e.Content.DeleteContent(ctx, targetType, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	if err := e.Flags.ResolveFlags(ctx, targetType, targetID, actorID, models.ResolutionRejected); err != nil {
		return err
	}

	return e.Events.RecordEvent(ctx, &models.ModerationEvent{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	})
}
