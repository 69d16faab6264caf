package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/moderation"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
	"github.com/tanvir-rahman/class-forum/backend/pkg/events"
)

// ModerationHandler handles the collaborative moderation workflow: vote
// casting, the admin direct-reject path, the pending queue and the audit log.
type ModerationHandler struct {
	voteRepository   repositories.VoteRepository
	flagRepository   repositories.FlagRepository
	threadRepository repositories.ThreadRepository
	replyRepository  repositories.ReplyRepository
	userRepository   repositories.UserRepository
	eventRepository  repositories.ModerationEventRepository
	executor         *moderation.Executor
	publisher        *events.Publisher
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(
	voteRepo repositories.VoteRepository,
	flagRepo repositories.FlagRepository,
	threadRepo repositories.ThreadRepository,
	replyRepo repositories.ReplyRepository,
	userRepo repositories.UserRepository,
	eventRepo repositories.ModerationEventRepository,
	executor *moderation.Executor,
	publisher *events.Publisher,
) *ModerationHandler {
	return &ModerationHandler{
		voteRepository:   voteRepo,
		flagRepository:   flagRepo,
		threadRepository: threadRepo,
		replyRepository:  replyRepo,
		userRepository:   userRepo,
		eventRepository:  eventRepo,
		executor:         executor,
		publisher:        publisher,
	}
}

// RegisterModerationRoutes registers moderation routes; the group is mounted
// behind the moderator guard
func (h *ModerationHandler) RegisterModerationRoutes(g *echo.Group) {
	g.POST("/moderation/votes", h.CastVote)
	g.POST("/moderation/reject", h.Reject)
	g.GET("/moderation/pending", h.GetPendingItems)
	g.GET("/moderation/events", h.GetEvents)
}

// CastVote records or overwrites the caller's vote on a flagged target,
// re-evaluates the ledger, and executes the majority decision once the
// quorum is reached. An edit majority is reported but deliberately never
// executed; it waits for explicit human action.
func (h *ModerationHandler) CastVote(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.CastVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	vote := &models.ModerationVote{
		VoterID:    user.ID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Vote:       req.Vote,
		Reason:     req.Reason,
	}
	if err := h.voteRepository.UpsertVote(vote); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to record vote")
	}

	ballots, err := h.voteRepository.ListBallots(req.TargetType, req.TargetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to evaluate votes")
	}

	state := moderation.EvaluateLedger(ballots)

	if state.CanDecide {
		switch state.MajorityVote {
		case models.VoteKeep:
			if err := h.executor.Resolve(c.Request().Context(), user.ID, user.Role, req.TargetType, req.TargetID, models.VoteKeep, "Approved by voting consensus"); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to execute decision")
			}
			go h.publisher.Publish(context.Background(), events.Event{
				Kind:       events.KindContentApproved,
				TargetType: req.TargetType,
				TargetID:   req.TargetID,
				ActorID:    user.ID,
			})
		case models.VoteDelete:
			if err := h.executor.Resolve(c.Request().Context(), user.ID, user.Role, req.TargetType, req.TargetID, models.VoteDelete, "Deleted by voting consensus"); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to execute decision")
			}
			go h.publisher.Publish(context.Background(), events.Event{
				Kind:       events.KindContentDeleted,
				TargetType: req.TargetType,
				TargetID:   req.TargetID,
				ActorID:    user.ID,
			})
		}
	}

	return c.JSON(http.StatusOK, state)
}

// Reject is the admin direct-reject path: it skips the ledger, removes the
// content, resolves its flags and records a reject audit event. Teachers
// must go through voting.
func (h *ModerationHandler) Reject(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.RejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.executor.Reject(c.Request().Context(), user.ID, user.Role, req.TargetType, req.TargetID, req.Reason)
	if err == moderation.ErrAdminOnly {
		return echo.NewHTTPError(http.StatusForbidden, "Teachers must use the voting system. Please cast your vote instead of direct rejection.")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reject item")
	}

	go h.publisher.Publish(context.Background(), events.Event{
		Kind:       events.KindContentRejected,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ActorID:    user.ID,
		Reason:     req.Reason,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PendingItem is one entry in the moderation queue
type PendingItem struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"` // thread, reply
	Title       string `json:"title,omitempty"`
	Body        string `json:"body"`
	AuthorName  string `json:"author_name"`
	FlagReason  string `json:"flag_reason,omitempty"`
	ThreadTitle string `json:"thread_title,omitempty"` // for replies
}

// GetPendingItems lists every thread and reply awaiting moderation, with
// its flag reason and author
func (h *ModerationHandler) GetPendingItems(c echo.Context) error {
	threads, err := h.threadRepository.ListPendingThreads()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch pending threads")
	}
	replies, err := h.replyRepository.ListPendingReplies()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch pending replies")
	}

	// One read for every open flag instead of a lookup per item
	openFlags, err := h.flagRepository.ListOpenFlags()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch flags")
	}
	flagReasons := make(map[string]string, len(openFlags))
	for _, flag := range openFlags {
		flagReasons[fmt.Sprintf("%s:%d", flag.TargetType, flag.TargetID)] = flag.Reason
	}

	items := make([]PendingItem, 0, len(threads)+len(replies))
	for _, thread := range threads {
		items = append(items, PendingItem{
			ID:         thread.ID,
			Type:       models.TargetThread,
			Title:      thread.Title,
			Body:       thread.Body,
			AuthorName: h.authorName(thread.AuthorID),
			FlagReason: flagReasons[fmt.Sprintf("%s:%d", models.TargetThread, thread.ID)],
		})
	}
	for _, reply := range replies {
		item := PendingItem{
			ID:         reply.ID,
			Type:       models.TargetReply,
			Body:       reply.Body,
			AuthorName: h.authorName(reply.AuthorID),
			FlagReason: flagReasons[fmt.Sprintf("%s:%d", models.TargetReply, reply.ID)],
		}
		if thread, err := h.threadRepository.GetThreadByID(reply.ThreadID); err == nil {
			item.ThreadTitle = thread.Title
		}
		items = append(items, item)
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvents returns the audit log, newest first. With target_type and
// target_id set it returns the trail of a single item instead.
func (h *ModerationHandler) GetEvents(c echo.Context) error {
	targetType := c.QueryParam("target_type")
	targetID, idErr := strconv.ParseUint(c.QueryParam("target_id"), 10, 32)
	if targetType != "" && idErr == nil {
		evts, err := h.eventRepository.ListByTarget(c.Request().Context(), targetType, uint(targetID))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation events")
		}
		return c.JSON(http.StatusOK, echo.Map{"events": evts})
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	evts, err := h.eventRepository.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation events")
	}
	return c.JSON(http.StatusOK, echo.Map{"events": evts})
}

func (h *ModerationHandler) authorName(authorID uint) string {
	author, err := h.userRepository.GetUserByID(authorID)
	if err != nil {
		return ""
	}
	return author.FullName
}
