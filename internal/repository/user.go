// Package repository provides the gorm-backed data access layer. Every
// storage failure is wrapped with models.NewInternalError before it leaves
// this package.
package repository

import (
	"context"
	"errors"
	"strings"

	"habitlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts the user together with its default settings row and
	// the level 1 unlock.
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID uint, username, avatar, bio string) error
	Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	if user.Level < 1 {
		user.Level = 1
	}

	var taken int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
		return models.NewInternalError(err)
	}
	if taken > 0 {
		return models.NewAlreadyExistsError("This email is already registered")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(models.NewUserSettings(user.ID)).Error; err != nil {
			return err
		}
		// every account starts with the level 1 badge
		return tx.Omit(clause.Associations).Create(&models.UserAchievement{
			UserID:      user.ID,
			LevelNumber: 1,
			UnlockedAt:  user.CreatedAt,
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID uint, username, avatar, bio string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"username": username, "avatar": avatar, "bio": bio})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	if err := r.db.WithContext(ctx).
		Where("(LOWER(username) LIKE ? OR LOWER(email) LIKE ?) AND id <> ?", pattern, pattern, excludeID).
		Order("username ASC, id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
