package services

import (
	"context"
	"fmt"

	"habitlink/internal/logger"
	"habitlink/internal/models"
	"habitlink/internal/repository"
)

// Notifier fans domain events out to in-app notifications and, when the
// recipient opted in, email. Failures are logged and never returned: a
// lost notification must not undo the action that caused it.
type Notifier struct {
	notifications repository.NotificationRepository
	settings      repository.SettingsRepository
	mail          Mailer
	baseURL       string
}

func NewNotifier(notifications repository.NotificationRepository, settings repository.SettingsRepository, mail Mailer, baseURL string) *Notifier {
	return &Notifier{notifications: notifications, settings: settings, mail: mail, baseURL: baseURL}
}

func (n *Notifier) push(ctx context.Context, userID uint, actorID *uint, typ models.NotificationType, reason string) {
	if n == nil || n.notifications == nil {
		return
	}
	err := n.notifications.Create(ctx, &models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    typ,
		Reason:  reason,
	})
	if err != nil {
		logger.Warn("Failed to store notification", "user_id", userID, "type", typ, "error", err)
	}
}

func (n *Notifier) FriendRequestSent(ctx context.Context, sender, recipient *models.User, settings *models.UserSettings) {
	if n == nil {
		return
	}
	actor := sender.ID
	n.push(ctx, recipient.ID, &actor, models.NotificationTypeFriendRequest,
		fmt.Sprintf("%s sent you a friend request", sender.Username))
	if n.mail != nil && settings != nil && settings.EmailNotifications {
		n.mail.SendFriendRequestEmail(recipient.Email, sender.Username, n.baseURL+"/community/requests")
	}
}

func (n *Notifier) FriendRequestAccepted(ctx context.Context, accepter *models.User, senderID uint) {
	if n == nil {
		return
	}
	actor := accepter.ID
	n.push(ctx, senderID, &actor, models.NotificationTypeFriendAccepted,
		fmt.Sprintf("%s accepted your friend request", accepter.Username))
}

func (n *Notifier) ChallengeInvite(ctx context.Context, sender *models.User, recipientID uint, challenge *models.Challenge) {
	if n == nil {
		return
	}
	settings, err := n.settings.Get(ctx, recipientID)
	if err != nil {
		logger.Warn("Failed to load settings for challenge invite notice", "user_id", recipientID, "error", err)
		return
	}
	if !settings.ChallengeNotifications {
		return
	}
	actor := sender.ID
	n.push(ctx, recipientID, &actor, models.NotificationTypeChallengeInvite,
		fmt.Sprintf("%s invited you to the challenge %q", sender.Username, challenge.Title))
}

func (n *Notifier) LevelUp(ctx context.Context, user *models.User, level models.Level) {
	if n == nil {
		return
	}
	settings, err := n.settings.Get(ctx, user.ID)
	if err != nil {
		logger.Warn("Failed to load settings for level up notice", "user_id", user.ID, "error", err)
		return
	}
	if !settings.LevelUpNotifications {
		return
	}
	n.push(ctx, user.ID, nil, models.NotificationTypeLevelUp,
		fmt.Sprintf("Congratulations! You reached level %d: %s", level.LevelNumber, level.Title))
	if n.mail != nil && settings.EmailNotifications {
		n.mail.SendLevelUpEmail(user.Email, level.LevelNumber, level.Title)
	}
}
