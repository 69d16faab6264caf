package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

// ReactionHandler handles HTTP requests related to moderator reactions
type ReactionHandler struct {
	reactionRepository repositories.ReactionRepository
	cache              *repositories.ReactionCache
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionRepo repositories.ReactionRepository, cache *repositories.ReactionCache) *ReactionHandler {
	return &ReactionHandler{reactionRepository: reactionRepo, cache: cache}
}

// RegisterReactionRoutes registers reaction routes; the group is mounted
// behind the moderator guard
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/reactions", h.React)
	g.GET("/reactions", h.GetReactions)
	g.GET("/reactions/counts", h.GetReactionCounts)
}

// React places, switches or removes the caller's reaction on a target.
// Each user holds a single reaction slot per target: reacting with the same
// type toggles the reaction off, a different type replaces it.
func (h *ReactionHandler) React(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	existing, err := h.reactionRepository.GetReaction(user.ID, req.TargetType, req.TargetID)
	switch {
	case err == gorm.ErrRecordNotFound:
		reaction := &models.Reaction{
			UserID:       user.ID,
			TargetType:   req.TargetType,
			TargetID:     req.TargetID,
			ReactionType: req.ReactionType,
		}
		if err := h.reactionRepository.CreateReaction(reaction); err != nil {
			return echo.NewHTTPError(http.StatusConflict, "Reaction could not be recorded")
		}
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	case existing.ReactionType == req.ReactionType:
		// Same type again: toggle off
		if err := h.reactionRepository.DeleteReaction(existing.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	default:
		if err := h.reactionRepository.UpdateReactionType(existing.ID, req.ReactionType); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if h.cache != nil {
		_ = h.cache.InvalidateCounts(c.Request().Context(), req.TargetType, req.TargetID)
	}

	reactions, err := h.reactionRepository.ListByTarget(req.TargetType, req.TargetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"reactions": reactions})
}

// GetReactions lists all reactions on a target
func (h *ReactionHandler) GetReactions(c echo.Context) error {
	targetType := c.QueryParam("target_type")
	targetID, err := strconv.ParseUint(c.QueryParam("target_id"), 10, 32)
	if targetType == "" || err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing target_type or target_id")
	}

	reactions, err := h.reactionRepository.ListByTarget(targetType, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"reactions": reactions})
}

// GetReactionCounts returns per-type tallies for a target, served from the
// Redis cache when warm
func (h *ReactionHandler) GetReactionCounts(c echo.Context) error {
	targetType := c.QueryParam("target_type")
	targetID, err := strconv.ParseUint(c.QueryParam("target_id"), 10, 32)
	if targetType == "" || err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing target_type or target_id")
	}

	if h.cache != nil {
		if counts, ok := h.cache.GetCounts(c.Request().Context(), targetType, uint(targetID)); ok {
			return c.JSON(http.StatusOK, echo.Map{"counts": counts})
		}
	}

	counts, err := h.reactionRepository.CountsByTarget(targetType, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.cache != nil {
		_ = h.cache.SetCounts(c.Request().Context(), targetType, uint(targetID), counts)
	}

	return c.JSON(http.StatusOK, echo.Map{"counts": counts})
}
