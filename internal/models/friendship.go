package models

import (
	"time"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is a directed request from Sender to Recipient.
type FriendRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	SenderID    uint                `gorm:"not null;index" json:"sender_id"`
	Sender      User                `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sender"`
	RecipientID uint                `gorm:"not null;index" json:"recipient_id"`
	Recipient   User                `gorm:"foreignKey:RecipientID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"recipient"`
	Status      FriendRequestStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Friendship is an accepted, unordered pair. UserLowID < UserHighID always
// holds so each pair has exactly one row.
type Friendship struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserLowID  uint      `gorm:"not null;uniqueIndex:idx_friend_pair" json:"user_low_id"`
	UserLow    User      `gorm:"foreignKey:UserLowID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserHighID uint      `gorm:"not null;uniqueIndex:idx_friend_pair;index" json:"user_high_id"`
	UserHigh   User      `gorm:"foreignKey:UserHighID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// FriendPair orders two user ids the way Friendship stores them.
func FriendPair(a, b uint) (low, high uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// NewFriendship builds the canonical edge between a and b.
func NewFriendship(a, b uint) *Friendship {
	low, high := FriendPair(a, b)
	return &Friendship{UserLowID: low, UserHighID: high}
}

// Other returns the member of the pair that is not userID.
func (f Friendship) Other(userID uint) uint {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

type FriendshipStatus string

const (
	FriendshipNone            FriendshipStatus = "none"
	FriendshipFriends         FriendshipStatus = "friends"
	FriendshipPendingSent     FriendshipStatus = "pending_sent"
	FriendshipPendingReceived FriendshipStatus = "pending_received"
)
