package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeFriendRequest   NotificationType = "friend_request"
	NotificationTypeFriendAccepted  NotificationType = "friend_accepted"
	NotificationTypeLevelUp         NotificationType = "level_up"
	NotificationTypeChallengeInvite NotificationType = "challenge_invite"
	NotificationTypeSystem          NotificationType = "system"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID   *uint            `gorm:"index" json:"actor_id"` // Sender, nil for system notices
	Actor     *User            `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor,omitempty"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Reason    string           `gorm:"type:text" json:"reason"`
	IsRead    bool             `gorm:"index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
