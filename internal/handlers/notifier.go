package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"github.com/tanvir-rahman/class-forum/backend/internal/repositories"
)

// Notifier fans notification rows out to users. Delivery is best-effort:
// failures are logged and never propagated to the request that triggered
// them.
type Notifier struct {
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	cache                  *repositories.ReactionCache
}

// NewNotifier creates a new Notifier
func NewNotifier(userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository, cache *repositories.ReactionCache) *Notifier {
	return &Notifier{
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		cache:                  cache,
	}
}

// NotifyFlaggedContent notifies every teacher and admin that a new item
// needs moderation review
func (n *Notifier) NotifyFlaggedContent(targetType string, targetID uint, title string) {
	moderators, err := n.userRepository.GetModerators()
	if err != nil {
		log.Printf("notifier: failed to fetch moderators: %v", err)
		return
	}

	notifications := make([]models.Notification, len(moderators))
	for i, moderator := range moderators {
		notifications[i] = models.Notification{
			Type:        models.NotificationFlaggedPost,
			RecipientID: moderator.ID,
			Title:       "Post Flagged for Review",
			Message:     fmt.Sprintf("A post %q has been flagged and requires moderation review.", title),
			RelatedID:   targetID,
		}
	}

	if err := n.notificationRepository.CreateNotifications(notifications); err != nil {
		log.Printf("notifier: failed to create flagged-content notifications: %v", err)
		return
	}

	if n.cache != nil {
		ctx := context.Background()
		for _, moderator := range moderators {
			if err := n.cache.InvalidateUnreadCount(ctx, moderator.ID); err != nil {
				log.Printf("notifier: failed to invalidate unread cache for user %d: %v", moderator.ID, err)
			}
		}
	}
}

// NotifyReply notifies a thread author that someone replied to their thread
func (n *Notifier) NotifyReply(recipientID uint, replierName, threadTitle string, threadID uint) {
	notification := &models.Notification{
		Type:        models.NotificationReply,
		RecipientID: recipientID,
		Title:       "New reply to your thread",
		Message:     fmt.Sprintf("%s replied to your thread %q.", replierName, threadTitle),
		RelatedID:   threadID,
	}
	if err := n.notificationRepository.CreateNotification(notification); err != nil {
		log.Printf("notifier: failed to create reply notification: %v", err)
		return
	}
	if n.cache != nil {
		if err := n.cache.InvalidateUnreadCount(context.Background(), recipientID); err != nil {
			log.Printf("notifier: failed to invalidate unread cache for user %d: %v", recipientID, err)
		}
	}
}

// NotifyAnnouncement fans a new announcement thread out to the teachers'
// lounge audience
func (n *Notifier) NotifyAnnouncement(title string, threadID uint) {
	moderators, err := n.userRepository.GetModerators()
	if err != nil {
		log.Printf("notifier: failed to fetch moderators: %v", err)
		return
	}

	notifications := make([]models.Notification, len(moderators))
	for i, moderator := range moderators {
		notifications[i] = models.Notification{
			Type:        models.NotificationAnnouncement,
			RecipientID: moderator.ID,
			Title:       "New Announcement",
			Message:     fmt.Sprintf("A new announcement %q was posted.", title),
			RelatedID:   threadID,
		}
	}

	if err := n.notificationRepository.CreateNotifications(notifications); err != nil {
		log.Printf("notifier: failed to create announcement notifications: %v", err)
		return
	}

	if n.cache != nil {
		ctx := context.Background()
		for _, moderator := range moderators {
			if err := n.cache.InvalidateUnreadCount(ctx, moderator.ID); err != nil {
				log.Printf("notifier: failed to invalidate unread cache for user %d: %v", moderator.ID, err)
			}
		}
	}
}
