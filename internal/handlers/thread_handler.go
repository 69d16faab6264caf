package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/moderation"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
	"github.com/tanvir-rahman/class-forum/backend/pkg/events"
)

// ThreadHandler handles HTTP requests related to threads
type ThreadHandler struct {
	threadRepository repositories.ThreadRepository
	replyRepository  repositories.ReplyRepository
	userRepository   repositories.UserRepository
	flagRepository   repositories.FlagRepository
	notifier         *Notifier
	eventRepository  repositories.ModerationEventRepository
	executor         *moderation.Executor
	publisher        *events.Publisher
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(
	threadRepo repositories.ThreadRepository,
	replyRepo repositories.ReplyRepository,
	userRepo repositories.UserRepository,
	flagRepo repositories.FlagRepository,
	notifier *Notifier,
	eventRepo repositories.ModerationEventRepository,
	executor *moderation.Executor,
	publisher *events.Publisher,
) *ThreadHandler {
	return &ThreadHandler{
		threadRepository: threadRepo,
		replyRepository:  replyRepo,
		userRepository:   userRepo,
		flagRepository:   flagRepo,
		notifier:         notifier,
		eventRepository:  eventRepo,
		executor:         executor,
		publisher:        publisher,
	}
}

// RegisterThreadRoutes registers thread-related routes
func (h *ThreadHandler) RegisterThreadRoutes(g *echo.Group) {
	g.POST("/threads", h.CreateThread)
	g.GET("/threads", h.ListThreads)
	g.GET("/threads/:id", h.GetThread)
	g.GET("/search", h.SearchThreads)
	g.GET("/teachers/categories", h.GetCategoryCounts)
}

// RegisterModeratorThreadRoutes registers thread routes behind the moderator guard
func (h *ThreadHandler) RegisterModeratorThreadRoutes(g *echo.Group) {
	g.DELETE("/threads/:id", h.DeleteThread)
	g.POST("/threads/:id/lock", h.LockThread)
	g.POST("/threads/:id/unlock", h.UnlockThread)
}

// CreateThread runs the submission pipeline for threads: validate, authorize
// visibility, classify, then persist. Blocked content is stored pending with
// its flag in one transaction and the moderators are notified.
func (h *ThreadHandler) CreateThread(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and body are required")
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility == models.VisibilityTeachersOnly && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}
	if req.Category != "" && visibility != models.VisibilityTeachersOnly {
		return echo.NewHTTPError(http.StatusBadRequest, "Categories apply to teachers_only threads")
	}

	result := moderation.ClassifyOffTopic(title + " " + body)
	isPending := result.Outcome == moderation.OutcomeBlock

	thread := &models.Thread{
		AuthorID:    user.ID,
		Title:       title,
		Body:        body,
		IsAnonymous: req.IsAnonymous,
		Visibility:  visibility,
		Status:      models.StatusOpen,
		Category:    req.Category,
		IsPending:   isPending,
		Attachments: req.Attachments,
	}

	var flag *models.Flag
	if isPending {
		flag = &models.Flag{Reason: result.Reason}
	}

	if err := h.threadRepository.CreateThread(thread, flag); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create thread")
	}

	if isPending {
		go h.notifier.NotifyFlaggedContent(models.TargetThread, thread.ID, thread.Title)
		go h.publisher.Publish(context.Background(), events.Event{
			Kind:       events.KindContentFlagged,
			TargetType: models.TargetThread,
			TargetID:   thread.ID,
			ActorID:    user.ID,
			Reason:     result.Reason,
		})
		return c.JSON(http.StatusCreated, echo.Map{"id": thread.ID, "pending": true})
	}

	if thread.Category == models.CategoryAnnouncements {
		go h.notifier.NotifyAnnouncement(thread.Title, thread.ID)
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": thread.ID, "pending": false})
}

// ListThreads lists visible threads. Pending threads are excluded by
// construction; teachers_only visibility requires a moderator caller.
func (h *ThreadHandler) ListThreads(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	visibility := c.QueryParam("visibility")
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility == models.VisibilityTeachersOnly && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}

	status := c.QueryParam("status")
	if status == "" {
		status = models.StatusOpen
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	threads, err := h.threadRepository.ListThreads(repositories.ThreadFilter{
		Visibility: visibility,
		Status:     status,
		Category:   c.QueryParam("category"),
		Query:      c.QueryParam("query"),
		Limit:      limit,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch threads")
	}

	return c.JSON(http.StatusOK, echo.Map{"threads": h.decorateThreads(threads)})
}

// SearchThreads performs full-text search over visible threads
func (h *ThreadHandler) SearchThreads(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusOK, echo.Map{"threads": []models.ThreadResponse{}})
	}

	visibility := c.QueryParam("visibility")
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility == models.VisibilityTeachersOnly && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	threads, err := h.threadRepository.ListThreads(repositories.ThreadFilter{
		Visibility: visibility,
		Query:      query,
		Limit:      limit,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"threads": h.decorateThreads(threads)})
}

// GetThread retrieves a thread with its visible replies
func (h *ThreadHandler) GetThread(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid thread ID")
	}

	thread, err := h.threadRepository.GetThreadByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Pending threads stay invisible to everyone but their author and the
	// moderators reviewing them.
	if thread.IsPending && thread.AuthorID != user.ID && !user.IsModerator() {
		return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
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
		decorated[i] = models.ReplyResponse{Reply: reply, AuthorName: h.authorName(reply.AuthorID, reply.IsAnonymous)}
	}

	response := echo.Map{
		"thread":      h.decorateThread(*thread),
		"replies":     decorated,
		"reply_count": len(decorated),
	}

	// A pending thread is only ever visible to its author or a moderator;
	// show them why it is held.
	if thread.IsPending {
		if flag, err := h.flagRepository.GetOpenFlag(models.TargetThread, thread.ID); err == nil {
			response["flag_reason"] = flag.Reason
		}
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteThread removes a thread through the decision executor so any open
// flags resolve and the audit log records the removal
func (h *ThreadHandler) DeleteThread(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid thread ID")
	}

	err = h.executor.Resolve(c.Request().Context(), user.ID, user.Role, models.TargetThread, uint(id), models.VoteDelete, "Deleted by moderator")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete thread")
	}

	go h.publisher.Publish(context.Background(), events.Event{
		Kind:       events.KindContentDeleted,
		TargetType: models.TargetThread,
		TargetID:   uint(id),
		ActorID:    user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// LockThread transitions a thread to locked, blocking new replies
func (h *ThreadHandler) LockThread(c echo.Context) error {
	return h.setStatus(c, models.StatusLocked, models.ActionLock, "Thread locked by moderator")
}

// UnlockThread reopens a locked thread
func (h *ThreadHandler) UnlockThread(c echo.Context) error {
	return h.setStatus(c, models.StatusOpen, models.ActionUnlock, "Thread unlocked by moderator")
}

func (h *ThreadHandler) setStatus(c echo.Context, status, action, reason string) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid thread ID")
	}

	if err := h.threadRepository.UpdateStatus(uint(id), status); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Thread not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Every lock transition lands in the audit log
	if err := h.eventRepository.RecordEvent(c.Request().Context(), &models.ModerationEvent{
		ActorID:    user.ID,
		Action:     action,
		TargetType: models.TargetThread,
		TargetID:   uint(id),
		Reason:     reason,
		CreatedAt:  time.Now(),
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record moderation event")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": status})
}

// GetCategoryCounts returns per-category thread tallies for the teachers' lounge
func (h *ThreadHandler) GetCategoryCounts(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil || !user.IsModerator() {
		return echo.NewHTTPError(http.StatusForbidden, "You lack the authorization to perform this action")
	}

	counts, err := h.threadRepository.CategoryCounts()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch category counts")
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": counts})
}

func (h *ThreadHandler) decorateThreads(threads []models.Thread) []models.ThreadResponse {
	decorated := make([]models.ThreadResponse, len(threads))
	for i, thread := range threads {
		decorated[i] = h.decorateThread(thread)
	}
	return decorated
}

func (h *ThreadHandler) decorateThread(thread models.Thread) models.ThreadResponse {
	replyCount, _ := h.threadRepository.CountReplies(thread.ID)
	return models.ThreadResponse{
		Thread:     thread,
		AuthorName: h.authorName(thread.AuthorID, thread.IsAnonymous),
		ReplyCount: replyCount,
	}
}

// authorName resolves the display name for content, hiding it for anonymous posts
func (h *ThreadHandler) authorName(authorID uint, isAnonymous bool) string {
	if isAnonymous {
		return "Anonymous"
	}
	author, err := h.userRepository.GetUserByID(authorID)
	if err != nil {
		return ""
	}
	return author.FullName
}
