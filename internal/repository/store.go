package repository

import (
	"gorm.io/gorm"
)

// Store bundles the repositories built over one connection.
type Store struct {
	Users         UserRepository
	Settings      SettingsRepository
	Friends       FriendRepository
	Levels        LevelRepository
	XP            XPRepository
	Activity      ActivityRepository
	Leaderboard   LeaderboardRepository
	Notifications NotificationRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Settings:      NewSettingsRepository(db),
		Friends:       NewFriendRepository(db),
		Levels:        NewLevelRepository(db),
		XP:            NewXPRepository(db),
		Activity:      NewActivityRepository(db),
		Leaderboard:   NewLeaderboardRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
