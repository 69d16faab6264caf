package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/moderation"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
	"github.com/tanvir-rahman/class-forum/backend/pkg/events"
)

// ReplyHandler handles HTTP requests related to replies
type ReplyHandler struct {
	replyRepository  repositories.ReplyRepository
	threadRepository repositories.ThreadRepository
	userRepository   repositories.UserRepository
	notifier         *Notifier
	publisher        *events.Publisher
}

// NewReplyHandler creates a new ReplyHandler
func NewReplyHandler(
	replyRepo repositories.ReplyRepository,
	threadRepo repositories.ThreadRepository,
	userRepo repositories.UserRepository,
	notifier *Notifier,
	publisher *events.Publisher,
) *ReplyHandler {
	return &ReplyHandler{
		replyRepository:  replyRepo,
		threadRepository: threadRepo,
		userRepository:   userRepo,
		notifier:         notifier,
		publisher:        publisher,
	}
}

// RegisterReplyRoutes registers reply-related routes
func (h *ReplyHandler) RegisterReplyRoutes(g *echo.Group) {
	g.POST("/threads/:id/replies", h.CreateReply)
	g.GET("/threads/:id/replies", h.ListReplies)
	g.GET("/replies/:id", h.GetReply)
}

// CreateReply runs the submission pipeline for replies. A locked thread
// rejects the reply before classification even runs.
func (h *ReplyHandler) CreateReply(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid thread ID")
	}

	var req models.CreateReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reply body is required")
	}

	thread, err := h.threadRepository.GetThreadByID(uint(threadID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if thread.Status == models.StatusLocked {
		return echo.NewHTTPError(http.StatusForbidden, "This thread is locked and cannot accept new replies")
	}
	if thread.Visibility == models.VisibilityTeachersOnly && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}

	result := moderation.ClassifyOffTopic(body)
	isPending := result.Outcome == moderation.OutcomeBlock

	reply := &models.Reply{
		ThreadID:    thread.ID,
		AuthorID:    user.ID,
		Body:        body,
		IsAnonymous: req.IsAnonymous,
		IsPending:   isPending,
		Attachments: req.Attachments,
	}

	var flag *models.Flag
	if isPending {
		flag = &models.Flag{Reason: result.Reason}
	}

	if err := h.replyRepository.CreateReply(reply, flag); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create reply")
	}

	if isPending {
		go h.notifier.NotifyFlaggedContent(models.TargetReply, reply.ID, thread.Title)
		go h.publisher.Publish(context.Background(), events.Event{
			Kind:       events.KindContentFlagged,
			TargetType: models.TargetReply,
			TargetID:   reply.ID,
			ActorID:    user.ID,
			Reason:     result.Reason,
		})
		return c.JSON(http.StatusCreated, echo.Map{"id": reply.ID, "pending": true})
	}

	if thread.AuthorID != user.ID {
		replierName := user.FullName
		if reply.IsAnonymous {
			replierName = "Someone"
		}
		go h.notifier.NotifyReply(thread.AuthorID, replierName, thread.Title, thread.ID)
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": reply.ID, "pending": false})
}

// GetReply retrieves a single reply. A pending reply is visible only to its
// author and to moderators, so an author can check on a held submission.
func (h *ReplyHandler) GetReply(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid reply ID")
	}

	reply, err := h.replyRepository.GetReplyByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if reply.IsPending && reply.AuthorID != user.ID && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusNotFound, "Reply not found")
	}

	thread, err := h.threadRepository.GetThreadByID(reply.ThreadID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if thread.Visibility == models.VisibilityTeachersOnly && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}

	name := "Anonymous"
	if !reply.IsAnonymous {
		if author, err := h.userRepository.GetUserByID(reply.AuthorID); err == nil {
			name = author.FullName
		} else {
			name = ""
		}
	}
	return c.JSON(http.StatusOK, models.ReplyResponse{Reply: *reply, AuthorName: name})
}

// ListReplies lists the visible replies of a thread, oldest first
func (h *ReplyHandler) ListReplies(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid thread ID")
	}

	thread, err := h.threadRepository.GetThreadByID(uint(threadID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if thread.Visibility == models.VisibilityTeachersOnly && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}

	replies, err := h.replyRepository.ListByThreadID(thread.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch replies")
	}

	decorated := make([]models.ReplyResponse, len(replies))
	for i, reply := range replies {
		name := "Anonymous"
		if !reply.IsAnonymous {
			if author, err := h.userRepository.GetUserByID(reply.AuthorID); err == nil {
				name = author.FullName
			} else {
				name = ""
			}
		}
		decorated[i] = models.ReplyResponse{Reply: reply, AuthorName: name}
	}

	return c.JSON(http.StatusOK, echo.Map{"replies": decorated})
}
