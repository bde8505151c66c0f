package repository

import (
	"context"
	"errors"
	"time"

	"habitlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LevelFunc maps cumulative XP onto a level number.
type LevelFunc func(xp int) int

// TxWrite is a write that commits or rolls back together with an XP award.
type TxWrite func(tx *gorm.DB) error

type LevelRepository interface {
	List(ctx context.Context) ([]models.Level, error)
	Unlocked(ctx context.Context, userID uint) ([]models.UserAchievement, error)
}

// XPRepository is the write side of the XP ledger.
type XPRepository interface {
	// Award runs writes, adds amount to the user's XP, stores the log row,
	// recomputes the level with levelOf and records an unlock for every
	// level reached that has none yet, all in one transaction.
	Award(ctx context.Context, userID uint, amount int, reason string, levelOf LevelFunc, writes ...TxWrite) (*models.XPAward, error)
	Logs(ctx context.Context, userID uint, limit int) ([]models.XPLog, error)
}

type levelRepository struct {
	db *gorm.DB
}

func NewLevelRepository(db *gorm.DB) LevelRepository {
	return &levelRepository{db: db}
}

func (r *levelRepository) List(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	if err := r.db.WithContext(ctx).Order("level_number ASC").Find(&levels).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return levels, nil
}

func (r *levelRepository) Unlocked(ctx context.Context, userID uint) ([]models.UserAchievement, error) {
	var unlocked []models.UserAchievement
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("level_number ASC").
		Find(&unlocked).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return unlocked, nil
}

type xpRepository struct {
	db *gorm.DB
}

func NewXPRepository(db *gorm.DB) XPRepository {
	return &xpRepository{db: db}
}

func (r *xpRepository) Award(ctx context.Context, userID uint, amount int, reason string, levelOf LevelFunc, writes ...TxWrite) (*models.XPAward, error) {
	award := &models.XPAward{UserID: userID, Amount: amount}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, write := range writes {
			if err := write(tx); err != nil {
				return err
			}
		}

		var user models.User
		if err := tx.Select("id", "level").First(&user, userID).Error; err != nil {
			return err
		}

		// 1. ledger row
		entry := models.XPLog{UserID: userID, Amount: amount, Reason: reason}
		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return err
		}

		// 2. balance, incremented in place so concurrent awards serialize on the row
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("xp", gorm.Expr("xp + ?", amount)).
			Error; err != nil {
			return err
		}
		var newXP int
		if err := tx.Model(&models.User{}).Select("xp").Where("id = ?", userID).Scan(&newXP).Error; err != nil {
			return err
		}

		// 3. level never goes down, even if the table is edited later
		award.NewXP = newXP
		award.OldXP = newXP - amount
		award.OldLevel = user.Level
		award.NewLevel = levelOf(newXP)
		if award.NewLevel < award.OldLevel {
			award.NewLevel = award.OldLevel
		}
		if award.NewLevel != user.Level {
			if err := tx.Model(&models.User{}).
				Where("id = ?", userID).
				UpdateColumn("level", award.NewLevel).
				Error; err != nil {
				return err
			}
		}

		// 4. unlock records, insert-if-absent keeps the first UnlockedAt
		now := time.Now()
		for n := 1; n <= award.NewLevel; n++ {
			res := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.UserAchievement{UserID: userID, LevelNumber: n, UnlockedAt: now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				award.Unlocked = append(award.Unlocked, n)
			}
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return award, nil
}

func (r *xpRepository) Logs(ctx context.Context, userID uint, limit int) ([]models.XPLog, error) {
	var logs []models.XPLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return logs, nil
}
