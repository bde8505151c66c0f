package repository

import (
	"context"
	"errors"

	"habitlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	// Get returns the user's settings, creating the defaults for accounts
	// that predate the settings table.
	Get(ctx context.Context, userID uint) (*models.UserSettings, error)
	Save(ctx context.Context, settings *models.UserSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if exists == 0 {
		return nil, models.NewNotFoundError("User", userID)
	}
	defaults := models.NewUserSettings(userID)
	if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return defaults, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.UserSettings) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(settings).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
