package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/moderation"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

type fakeVoteStore struct {
	roles   map[uint]string
	ballots map[string][]moderation.BallotEntry
}

func newFakeVoteStore(roles map[uint]string) *fakeVoteStore {
	return &fakeVoteStore{roles: roles, ballots: make(map[string][]moderation.BallotEntry)}
}

func ballotKey(targetType string, targetID uint) string {
	return fmt.Sprintf("%s:%d", targetType, targetID)
}

func (s *fakeVoteStore) UpsertVote(vote *models.ModerationVote) error {
	key := ballotKey(vote.TargetType, vote.TargetID)
	entries := s.ballots[key]
	for i, entry := range entries {
		if entry.VoterID == vote.VoterID {
			entries[i].Vote = vote.Vote
			entries[i].Reason = vote.Reason
			return nil
		}
	}
	s.ballots[key] = append(entries, moderation.BallotEntry{
		VoterID:   vote.VoterID,
		VoterRole: s.roles[vote.VoterID],
		Vote:      vote.Vote,
		Reason:    vote.Reason,
		CreatedAt: time.Unix(int64(1700000000+len(entries)), 0),
	})
	return nil
}

func (s *fakeVoteStore) ListBallots(targetType string, targetID uint) ([]moderation.BallotEntry, error) {
	return s.ballots[ballotKey(targetType, targetID)], nil
}

type fakeContentState struct {
	pending map[string]bool
	deleted map[string]bool
}

func newFakeContentState() *fakeContentState {
	return &fakeContentState{pending: make(map[string]bool), deleted: make(map[string]bool)}
}

func (s *fakeContentState) ClearPending(ctx context.Context, targetType string, targetID uint) (bool, error) {
	key := ballotKey(targetType, targetID)
	if s.deleted[key] || !s.pending[key] {
		return false, nil
	}
	s.pending[key] = false
	return true, nil
}

func (s *fakeContentState) DeleteContent(ctx context.Context, targetType string, targetID uint) (bool, error) {
	key := ballotKey(targetType, targetID)
	if s.deleted[key] {
		return false, nil
	}
	s.deleted[key] = true
	return true, nil
}

type fakeFlagStore struct {
	resolutions []string
}

func (s *fakeFlagStore) GetOpenFlag(targetType string, targetID uint) (*models.Flag, error) {
	return &models.Flag{TargetType: targetType, TargetID: targetID, Reason: "off_topic:social"}, nil
}

func (s *fakeFlagStore) ListOpenFlags() ([]models.Flag, error) { return nil, nil }

func (s *fakeFlagStore) ResolveFlags(ctx context.Context, targetType string, targetID uint, resolverID uint, resolution string) error {
	s.resolutions = append(s.resolutions, resolution)
	return nil
}

type fakeEventLog struct {
	events []models.ModerationEvent
}

func (l *fakeEventLog) RecordEvent(ctx context.Context, event *models.ModerationEvent) error {
	l.events = append(l.events, *event)
	return nil
}

func (l *fakeEventLog) ListRecent(ctx context.Context, limit int64) ([]models.ModerationEvent, error) {
	return l.events, nil
}

func (l *fakeEventLog) ListByTarget(ctx context.Context, targetType string, targetID uint) ([]models.ModerationEvent, error) {
	return l.events, nil
}

type stubThreadRepo struct{ repositories.ThreadRepository }
type stubReplyRepo struct{ repositories.ReplyRepository }
type stubUserRepo struct{ repositories.UserRepository }

type moderationFixture struct {
	handler *ModerationHandler
	votes   *fakeVoteStore
	content *fakeContentState
	flags   *fakeFlagStore
	log     *fakeEventLog
}

func newModerationFixture(roles map[uint]string) *moderationFixture {
	votes := newFakeVoteStore(roles)
	content := newFakeContentState()
	flags := &fakeFlagStore{}
	log := &fakeEventLog{}
	executor := moderation.NewExecutor(content, flags, log)
	handler := NewModerationHandler(votes, flags, stubThreadRepo{}, stubReplyRepo{}, stubUserRepo{}, log, executor, nil)
	return &moderationFixture{handler: handler, votes: votes, content: content, flags: flags, log: log}
}

func moderationRequest(t *testing.T, method, path string, body interface{}, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(string(payload)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserKey, user)
	return c, rec
}

func TestCastVoteSingleTeacherHasNoQuorum(t *testing.T) {
	fx := newModerationFixture(map[uint]string{10: models.RoleTeacher})
	fx.content.pending["thread:1"] = true

	teacher := &models.User{Role: models.RoleTeacher}
	teacher.ID = 10

	c, rec := moderationRequest(t, http.MethodPost, "/moderation/votes", models.CastVoteRequest{
		TargetType: models.TargetThread,
		TargetID:   1,
		Vote:       models.VoteDelete,
	}, teacher)

	assert.NoError(t, fx.handler.CastVote(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var state moderation.LedgerState
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.CanDecide)

	assert.True(t, fx.content.pending["thread:1"], "content must stay pending without quorum")
	assert.False(t, fx.content.deleted["thread:1"])
	assert.Empty(t, fx.log.events)
}

func TestCastVoteSecondTeacherTriggersDelete(t *testing.T) {
	fx := newModerationFixture(map[uint]string{10: models.RoleTeacher, 11: models.RoleTeacher})
	fx.content.pending["thread:1"] = true
	fx.votes.UpsertVote(&models.ModerationVote{VoterID: 10, TargetType: models.TargetThread, TargetID: 1, Vote: models.VoteDelete})

	teacher := &models.User{Role: models.RoleTeacher}
	teacher.ID = 11

	c, rec := moderationRequest(t, http.MethodPost, "/moderation/votes", models.CastVoteRequest{
		TargetType: models.TargetThread,
		TargetID:   1,
		Vote:       models.VoteDelete,
	}, teacher)

	assert.NoError(t, fx.handler.CastVote(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var state moderation.LedgerState
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.CanDecide)
	assert.Equal(t, models.VoteDelete, state.MajorityVote)

	assert.True(t, fx.content.deleted["thread:1"])
	assert.Equal(t, []string{models.ResolutionRejected}, fx.flags.resolutions)
	if assert.Len(t, fx.log.events, 1) {
		assert.Equal(t, models.ActionDelete, fx.log.events[0].Action)
		assert.Equal(t, "Deleted by voting consensus", fx.log.events[0].Reason)
	}
}

func TestCastVoteAdminKeepOverridesTeachers(t *testing.T) {
	fx := newModerationFixture(map[uint]string{10: models.RoleTeacher, 11: models.RoleTeacher, 1: models.RoleAdmin})
	fx.content.pending["reply:7"] = true
	fx.votes.UpsertVote(&models.ModerationVote{VoterID: 10, TargetType: models.TargetReply, TargetID: 7, Vote: models.VoteDelete})
	fx.votes.UpsertVote(&models.ModerationVote{VoterID: 11, TargetType: models.TargetReply, TargetID: 7, Vote: models.VoteDelete})

	admin := &models.User{Role: models.RoleAdmin}
	admin.ID = 1

	c, rec := moderationRequest(t, http.MethodPost, "/moderation/votes", models.CastVoteRequest{
		TargetType: models.TargetReply,
		TargetID:   7,
		Vote:       models.VoteKeep,
	}, admin)

	assert.NoError(t, fx.handler.CastVote(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var state moderation.LedgerState
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.CanDecide)
	assert.Equal(t, models.VoteKeep, state.MajorityVote)

	assert.False(t, fx.content.pending["reply:7"], "admin keep must clear the pending flag")
	assert.False(t, fx.content.deleted["reply:7"])
	assert.Equal(t, []string{models.ResolutionApproved}, fx.flags.resolutions)
	if assert.Len(t, fx.log.events, 1) {
		assert.Equal(t, models.ActionApprove, fx.log.events[0].Action)
	}
}

func TestCastVoteRepeatedQuorumIsIdempotent(t *testing.T) {
	fx := newModerationFixture(map[uint]string{10: models.RoleTeacher, 11: models.RoleTeacher})
	fx.content.pending["thread:1"] = true
	fx.votes.UpsertVote(&models.ModerationVote{VoterID: 10, TargetType: models.TargetThread, TargetID: 1, Vote: models.VoteKeep})

	teacher := &models.User{Role: models.RoleTeacher}
	teacher.ID = 11

	for i := 0; i < 2; i++ {
		c, _ := moderationRequest(t, http.MethodPost, "/moderation/votes", models.CastVoteRequest{
			TargetType: models.TargetThread,
			TargetID:   1,
			Vote:       models.VoteKeep,
		}, teacher)
		assert.NoError(t, fx.handler.CastVote(c))
	}

	assert.Len(t, fx.flags.resolutions, 1, "flags resolve once even when the quorum re-fires")
	assert.Len(t, fx.log.events, 1)
}

func TestRejectRequiresAdmin(t *testing.T) {
	fx := newModerationFixture(map[uint]string{10: models.RoleTeacher})
	fx.content.pending["thread:1"] = true

	teacher := &models.User{Role: models.RoleTeacher}
	teacher.ID = 10

	c, _ := moderationRequest(t, http.MethodPost, "/moderation/reject", models.RejectRequest{
		TargetType: models.TargetThread,
		TargetID:   1,
		Reason:     "Not appropriate for the forum",
	}, teacher)

	err := fx.handler.Reject(c)
	httpErr, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	}
	assert.False(t, fx.content.deleted["thread:1"])
}

func TestRejectAdminRemovesContent(t *testing.T) {
	fx := newModerationFixture(map[uint]string{1: models.RoleAdmin})
	fx.content.pending["thread:1"] = true

	admin := &models.User{Role: models.RoleAdmin}
	admin.ID = 1

	c, rec := moderationRequest(t, http.MethodPost, "/moderation/reject", models.RejectRequest{
		TargetType: models.TargetThread,
		TargetID:   1,
		Reason:     "Spam",
	}, admin)

	assert.NoError(t, fx.handler.Reject(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, fx.content.deleted["thread:1"])
	assert.Equal(t, []string{models.ResolutionRejected}, fx.flags.resolutions)
	if assert.Len(t, fx.log.events, 1) {
		assert.Equal(t, models.ActionReject, fx.log.events[0].Action)
		assert.Equal(t, "Spam", fx.log.events[0].Reason)
	}
}
