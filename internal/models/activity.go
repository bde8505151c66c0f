package models

import (
	"time"
)

type Habit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	XPReward    int       `gorm:"column:xp_reward;not null" json:"xp_reward"`
	CreatedAt   time.Time `json:"created_at"`
}

type HabitCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HabitID     uint      `gorm:"not null;index" json:"habit_id"`
	Habit       Habit     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CompletedAt time.Time `gorm:"not null;index" json:"completed_at"`
}

type Goal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	XPReward    int        `gorm:"column:xp_reward;not null" json:"xp_reward"`
	IsCompleted bool       `gorm:"index" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"creator"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	XPReward    int       `gorm:"column:xp_reward;not null" json:"xp_reward"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChallengeParticipant struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ChallengeID uint       `gorm:"not null;uniqueIndex:idx_challenge_user" json:"challenge_id"`
	Challenge   Challenge  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"challenge"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_challenge_user;index" json:"user_id"`
	IsCompleted bool       `gorm:"index" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	JoinedAt    time.Time  `gorm:"autoCreateTime" json:"joined_at"`
}

type ChallengeInvite struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	ChallengeID uint                `gorm:"not null;index" json:"challenge_id"`
	Challenge   Challenge           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"challenge"`
	SenderID    uint                `gorm:"not null" json:"sender_id"`
	RecipientID uint                `gorm:"not null;index" json:"recipient_id"`
	Status      FriendRequestStatus `gorm:"type:varchar(10);not null" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

type JournalEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"` // markdown
	CreatedAt time.Time `json:"created_at"`
}

// XP rewards used when a record is created without an explicit value.
const (
	DefaultHabitXP     = 10
	DefaultGoalXP      = 50
	DefaultChallengeXP = 100
	JournalEntryXP     = 5
)

// ActivityHistory is the aggregated input the achievement rules run over.
type ActivityHistory struct {
	HabitCompletions    []time.Time
	CompletedGoals      int
	CompletedChallenges int
	JournalEntries      int
}

// LeaderboardEntry is computed per query and never stored.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Value    int    `json:"value"`
}
