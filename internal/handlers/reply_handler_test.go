package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

type fakeReplyStore struct {
	repositories.ReplyRepository
	replies map[uint]*models.Reply
	flags   []models.Flag
	nextID  uint
}

func newFakeReplyStore() *fakeReplyStore {
	return &fakeReplyStore{replies: make(map[uint]*models.Reply)}
}

func (s *fakeReplyStore) CreateReply(reply *models.Reply, flag *models.Flag) error {
	s.nextID++
	reply.ID = s.nextID
	s.replies[reply.ID] = reply
	if flag != nil {
		flag.TargetType = models.TargetReply
		flag.TargetID = reply.ID
		s.flags = append(s.flags, *flag)
	}
	return nil
}

type replyFixture struct {
	handler *ReplyHandler
	threads *fakeThreadStore
	replies *fakeReplyStore
}

func newReplyFixture() *replyFixture {
	threads := newFakeThreadStore()
	replies := newFakeReplyStore()
	users := &fakeAccountStore{users: make(map[uint]*models.User)}
	notifier := NewNotifier(users, &fakeNotificationStore{}, nil)
	handler := NewReplyHandler(replies, threads, users, notifier, nil)
	return &replyFixture{handler: handler, threads: threads, replies: replies}
}

func (fx *replyFixture) seedThread(id uint, status string) {
	thread := &models.Thread{
		AuthorID:   1,
		Title:      "Study group for the physics exam",
		Body:       "Looking for classmates to study chapter six together.",
		Visibility: models.VisibilityPublic,
		Status:     status,
	}
	thread.ID = id
	fx.threads.threads[id] = thread
}

func replyRequest(t *testing.T, fx *replyFixture, threadID string, body models.CreateReplyRequest, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := moderationRequest(t, http.MethodPost, "/threads/"+threadID+"/replies", body, user)
	c.SetParamNames("id")
	c.SetParamValues(threadID)
	return c, rec
}

func TestCreateReplyLockedThreadRejected(t *testing.T) {
	fx := newReplyFixture()
	fx.seedThread(1, models.StatusLocked)
	student := userWithRole(7, models.RoleStudent)

	c, _ := replyRequest(t, fx, "1", models.CreateReplyRequest{
		Body: "anyone selling concert tickets this weekend?",
	}, student)

	err := fx.handler.CreateReply(c)
	httpErr, ok := err.(*echo.HTTPError)
	if assert.True(t, ok) {
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	}

	// The lock gate fires before classification, so nothing is persisted
	// even for a body the classifier would block.
	assert.Empty(t, fx.replies.replies)
	assert.Empty(t, fx.replies.flags)
}

func TestCreateReplyBlockedBodyIsHeldPending(t *testing.T) {
	fx := newReplyFixture()
	fx.seedThread(1, models.StatusOpen)
	student := userWithRole(7, models.RoleStudent)

	c, rec := replyRequest(t, fx, "1", models.CreateReplyRequest{
		Body: "selling my old calculator, message me",
	}, student)

	assert.NoError(t, fx.handler.CreateReply(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID      uint `json:"id"`
		Pending bool `json:"pending"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Pending)
	assert.True(t, fx.replies.replies[resp.ID].IsPending)

	if assert.Len(t, fx.replies.flags, 1) {
		flag := fx.replies.flags[0]
		assert.Equal(t, "off_topic:marketplace", flag.Reason)
		assert.Equal(t, models.TargetReply, flag.TargetType)
		assert.Equal(t, resp.ID, flag.TargetID)
	}
}

func TestCreateReplyCleanBodyPostsImmediately(t *testing.T) {
	fx := newReplyFixture()
	fx.seedThread(1, models.StatusOpen)
	student := userWithRole(7, models.RoleStudent)

	c, rec := replyRequest(t, fx, "1", models.CreateReplyRequest{
		Body: "The exam covers chapters four and five.",
	}, student)

	assert.NoError(t, fx.handler.CreateReply(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID      uint `json:"id"`
		Pending bool `json:"pending"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Pending)
	assert.False(t, fx.replies.replies[resp.ID].IsPending)
	assert.Empty(t, fx.replies.flags)
}
