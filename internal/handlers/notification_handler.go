package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tanvir-rahman/class-forum/backend/internal/middleware"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	cache                  *repositories.ReactionCache
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, cache *repositories.ReactionCache) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		cache:                  cache,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	user := middleware.CurrentUser(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	notifications, err := h.notificationRepository.GetByRecipientID(user.ID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"notifications": notifications})
}

// GetUnreadCount returns the caller's unread counter, served from Redis
// when a fresh value is cached
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	if count, ok := h.cache.GetUnreadCount(ctx, user.ID); ok {
		return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
	}

	count, err := h.notificationRepository.GetUnreadCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch unread count")
	}
	h.cache.SetUnreadCount(ctx, user.ID, count)

	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAsRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkAsRead(uint(id), user.ID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}
	h.cache.InvalidateUnreadCount(c.Request().Context(), user.ID)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks every unread notification of the caller as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	user := middleware.CurrentUser(c)

	if err := h.notificationRepository.MarkAllAsRead(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notifications as read")
	}
	h.cache.InvalidateUnreadCount(c.Request().Context(), user.ID)

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
