package models

import (
	"time"
)

type XPLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Amount    int       `gorm:"not null" json:"amount"`          // always positive
	Reason    string    `gorm:"type:text;not null" json:"reason"` // e.g. "Completed habit: Read"
	CreatedAt time.Time `json:"created_at"`
}

func (XPLog) TableName() string {
	return "xp_logs"
}

// XPAward is the outcome of one ledger write.
type XPAward struct {
	UserID   uint
	Amount   int
	OldXP    int
	NewXP    int
	OldLevel int
	NewLevel int
	// Levels whose unlock record was created by this award.
	Unlocked []int
}

func (a XPAward) LeveledUp() bool {
	return a.NewLevel > a.OldLevel
}
