package models

import (
	"time"
)

type ProfileVisibility string

const (
	VisibilityUnset   ProfileVisibility = ""
	VisibilityPrivate ProfileVisibility = "private"
	VisibilityFriends ProfileVisibility = "friends"
	VisibilityMembers ProfileVisibility = "members"
	VisibilityPublic  ProfileVisibility = "public"
)

// Valid reports whether v is one of the known visibility levels. The empty
// value is not valid input, it only appears on rows written before the enum existed.
func (v ProfileVisibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFriends, VisibilityMembers, VisibilityPublic:
		return true
	}
	return false
}

var (
	Themes       = []string{"light", "dark", "system"}
	ColorSchemes = []string{"default", "teal", "indigo", "rose", "amber", "emerald"}
)

// UserSettings holds appearance, notification and privacy preferences.
// No gorm defaults on booleans: a false value would be replaced on insert,
// rows are always built with NewUserSettings.
type UserSettings struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Appearance
	Theme            string `gorm:"size:10;not null" json:"theme"`
	ColorScheme      string `gorm:"size:20;not null" json:"color_scheme"`
	EnableAnimations bool   `json:"enable_animations"`
	CompactMode      bool   `json:"compact_mode"`

	// Notifications
	EmailNotifications     bool `json:"email_notifications"`
	HabitReminders         bool `json:"habit_reminders"`
	GoalUpdates            bool `json:"goal_updates"`
	ChallengeNotifications bool `json:"challenge_notifications"`
	LevelUpNotifications   bool `json:"level_up_notifications"`
	EmailDaily             bool `json:"email_daily"`
	EmailWeekly            bool `json:"email_weekly"`
	EmailReminders         bool `json:"email_reminders"`

	// Privacy
	ProfileVisibility     ProfileVisibility `gorm:"type:varchar(10)" json:"profile_visibility"`
	PublicProfile         bool              `json:"public_profile"` // legacy flag, derived from ProfileVisibility when set
	ShowStats             bool              `json:"show_stats"`
	ShowHabits            bool              `json:"show_habits"`
	ShowGoals             bool              `json:"show_goals"`
	ShowChallenges        bool              `json:"show_challenges"`
	ShowAchievements      bool              `json:"show_achievements"`
	ShowInLeaderboards    bool              `json:"show_in_leaderboards"`
	AllowFriendRequests   bool              `json:"allow_friend_requests"`
	AllowChallengeInvites bool              `json:"allow_challenge_invites"`
	AnalyticsConsent      bool              `json:"analytics_consent"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserSettings returns the settings a freshly registered user starts with.
func NewUserSettings(userID uint) *UserSettings {
	return &UserSettings{
		UserID:                 userID,
		Theme:                  "light",
		ColorScheme:            "default",
		EnableAnimations:       true,
		EmailNotifications:     true,
		HabitReminders:         true,
		GoalUpdates:            true,
		ChallengeNotifications: true,
		LevelUpNotifications:   true,
		ProfileVisibility:      VisibilityMembers,
		ShowChallenges:         true,
		ShowInLeaderboards:     true,
		AllowFriendRequests:    true,
		AllowChallengeInvites:  true,
	}
}
