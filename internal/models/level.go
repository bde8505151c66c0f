package models

import (
	"time"
)

type Level struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	LevelNumber      int    `gorm:"uniqueIndex;not null" json:"level_number"`
	XPRequired       int    `gorm:"column:xp_required;not null" json:"xp_required"`
	Title            string `gorm:"size:50;not null" json:"title"`
	BadgeName        string `gorm:"size:50" json:"badge_name"`
	BadgeDescription string `gorm:"size:200" json:"badge_description"`
	BadgeImage       string `gorm:"size:200" json:"badge_image"`
}

// UserAchievement records the moment a user first reached a level.
// UnlockedAt is written once and never updated.
type UserAchievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_level" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	LevelNumber int       `gorm:"not null;uniqueIndex:idx_user_level" json:"level_number"`
	UnlockedAt  time.Time `gorm:"not null" json:"unlocked_at"`
}
