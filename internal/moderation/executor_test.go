package moderation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
)

type fakeContent struct {
	pending map[string]bool // key present = row exists; value = is_pending
}

func targetKey(targetType string, targetID uint) string {
	return fmt.Sprintf("%s:%d", targetType, targetID)
}

func (f *fakeContent) ClearPending(_ context.Context, targetType string, targetID uint) (bool, error) {
	key := targetKey(targetType, targetID)
	pending, ok := f.pending[key]
	if !ok || !pending {
		return false, nil
	}
	f.pending[key] = false
	return true, nil
}

func (f *fakeContent) DeleteContent(_ context.Context, targetType string, targetID uint) (bool, error) {
	key := targetKey(targetType, targetID)
	if _, ok := f.pending[key]; !ok {
		return false, nil
	}
	delete(f.pending, key)
	return true, nil
}

type resolvedFlag struct {
	targetType string
	targetID   uint
	resolverID uint
	resolution string
}

type fakeFlags struct {
	resolved []resolvedFlag
}

func (f *fakeFlags) ResolveFlags(_ context.Context, targetType string, targetID uint, resolverID uint, resolution string) error {
	f.resolved = append(f.resolved, resolvedFlag{targetType, targetID, resolverID, resolution})
	return nil
}

type fakeEvents struct {
	events []models.ModerationEvent
}

func (f *fakeEvents) RecordEvent(_ context.Context, event *models.ModerationEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func newTestExecutor(pending map[string]bool) (*Executor, *fakeContent, *fakeFlags, *fakeEvents) {
	content := &fakeContent{pending: pending}
	flags := &fakeFlags{}
	events := &fakeEvents{}
	return NewExecutor(content, flags, events), content, flags, events
}

func TestExecutorKeepClearsPendingAndApprovesFlags(t *testing.T) {
	assert := assert.New(t)
	exec, content, flags, events := newTestExecutor(map[string]bool{"thread:1": true})

	err := exec.Resolve(context.Background(), 7, models.RoleTeacher, models.TargetThread, 1, models.VoteKeep, "Approved by voting consensus")
	assert.NoError(err)

	assert.False(content.pending["thread:1"])
	if assert.Len(flags.resolved, 1) {
		assert.Equal(models.ResolutionApproved, flags.resolved[0].resolution)
		assert.Equal(uint(7), flags.resolved[0].resolverID)
	}
	if assert.Len(events.events, 1) {
		assert.Equal(models.ActionApprove, events.events[0].Action)
		assert.Equal(uint(1), events.events[0].TargetID)
	}
}

func TestExecutorDeleteRemovesContentAndRejectsFlags(t *testing.T) {
	assert := assert.New(t)
	exec, content, flags, events := newTestExecutor(map[string]bool{"reply:2": true})

	err := exec.Resolve(context.Background(), 7, models.RoleAdmin, models.TargetReply, 2, models.VoteDelete, "Deleted by voting consensus")
	assert.NoError(err)

	_, exists := content.pending["reply:2"]
	assert.False(exists)
	if assert.Len(flags.resolved, 1) {
		assert.Equal(models.ResolutionRejected, flags.resolved[0].resolution)
	}
	if assert.Len(events.events, 1) {
		assert.Equal(models.ActionDelete, events.events[0].Action)
	}
}

func TestExecutorResolveIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	exec, _, flags, events := newTestExecutor(map[string]bool{"thread:1": true})
	ctx := context.Background()

	assert.NoError(exec.Resolve(ctx, 7, models.RoleAdmin, models.TargetThread, 1, models.VoteDelete, "gone"))
	// The target no longer exists; a second resolution must be a no-op,
	// producing no duplicate flag resolutions or audit events.
	assert.NoError(exec.Resolve(ctx, 8, models.RoleAdmin, models.TargetThread, 1, models.VoteDelete, "gone again"))
	assert.NoError(exec.Resolve(ctx, 8, models.RoleAdmin, models.TargetThread, 1, models.VoteKeep, "approve what"))

	assert.Len(flags.resolved, 1)
	assert.Len(events.events, 1)
}

func TestExecutorKeepOnNonPendingTargetIsNoOp(t *testing.T) {
	assert := assert.New(t)
	exec, _, flags, events := newTestExecutor(map[string]bool{"thread:1": false})

	assert.NoError(exec.Resolve(context.Background(), 7, models.RoleTeacher, models.TargetThread, 1, models.VoteKeep, ""))
	assert.Empty(flags.resolved)
	assert.Empty(events.events)
}

func TestExecutorEditNeverAutoExecutes(t *testing.T) {
	assert := assert.New(t)
	exec, content, flags, events := newTestExecutor(map[string]bool{"thread:1": true})

	err := exec.Resolve(context.Background(), 7, models.RoleAdmin, models.TargetThread, 1, models.VoteEdit, "needs revision")
	assert.ErrorIs(err, ErrNoExecution)

	// Nothing happened: content untouched, no flags resolved, no audit row.
	assert.True(content.pending["thread:1"])
	assert.Empty(flags.resolved)
	assert.Empty(events.events)
}

func TestExecutorRoleGates(t *testing.T) {
	assert := assert.New(t)
	exec, _, _, _ := newTestExecutor(map[string]bool{"thread:1": true})
	ctx := context.Background()

	err := exec.Resolve(ctx, 7, models.RoleStudent, models.TargetThread, 1, models.VoteKeep, "")
	assert.ErrorIs(err, ErrNotModerator)

	// Direct rejection is admin-only; a teacher must go through voting.
	err = exec.Reject(ctx, 7, models.RoleTeacher, models.TargetThread, 1, "off topic")
	assert.ErrorIs(err, ErrAdminOnly)
}

func TestExecutorRejectRecordsRejectAction(t *testing.T) {
	assert := assert.New(t)
	exec, _, flags, events := newTestExecutor(map[string]bool{"reply:3": true})

	err := exec.Reject(context.Background(), 9, models.RoleAdmin, models.TargetReply, 3, "inappropriate")
	assert.NoError(err)

	if assert.Len(events.events, 1) {
		assert.Equal(models.ActionReject, events.events[0].Action)
		assert.Equal("inappropriate", events.events[0].Reason)
	}
	// The admin path resolves flags just like the voting path does.
	if assert.Len(flags.resolved, 1) {
		assert.Equal(models.ResolutionRejected, flags.resolved[0].resolution)
	}
}
