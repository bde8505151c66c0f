package db

import (
	"fmt"

	"habitlink/internal/logger"
	"habitlink/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured store, migrates the schema and seeds the
// level table. The returned handle is passed to repositories explicitly.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("Database connection established", "driver", driver)

	if driver == "sqlite" {
		// a single connection keeps :memory: databases alive and serializes writers
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	if err := SeedLevels(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Level{},
		&models.UserAchievement{},
		&models.XPLog{},
		&models.Habit{},
		&models.HabitCompletion{},
		&models.Goal{},
		&models.Challenge{},
		&models.ChallengeParticipant{},
		&models.ChallengeInvite{},
		&models.JournalEntry{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	// at most one pending request per ordered pair
	if err := conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_pending_pair
		ON friend_requests (sender_id, recipient_id) WHERE status = 'pending'`).Error; err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("Database migration completed")
	return nil
}

// DefaultLevels is the threshold table installed on an empty database.
var DefaultLevels = []models.Level{
	{LevelNumber: 1, XPRequired: 0, Title: "Beginner", BadgeName: "First Steps", BadgeDescription: "Started the journey", BadgeImage: "gem"},
	{LevelNumber: 2, XPRequired: 100, Title: "Apprentice", BadgeName: "Getting Started", BadgeDescription: "Earned your first 100 XP", BadgeImage: "star"},
	{LevelNumber: 3, XPRequired: 250, Title: "Habit Builder", BadgeName: "Building Momentum", BadgeDescription: "Earned 250 XP", BadgeImage: "award"},
	{LevelNumber: 4, XPRequired: 500, Title: "Consistent", BadgeName: "Steady Hand", BadgeDescription: "Earned 500 XP", BadgeImage: "trophy"},
	{LevelNumber: 5, XPRequired: 1000, Title: "Dedicated", BadgeName: "Lightning Focus", BadgeDescription: "Earned 1,000 XP", BadgeImage: "lightning"},
	{LevelNumber: 6, XPRequired: 2000, Title: "Achiever", BadgeName: "High Achiever", BadgeDescription: "Earned 2,000 XP", BadgeImage: "award"},
	{LevelNumber: 7, XPRequired: 3500, Title: "Expert", BadgeName: "Expert Tracker", BadgeDescription: "Earned 3,500 XP", BadgeImage: "award"},
	{LevelNumber: 8, XPRequired: 5000, Title: "Master", BadgeName: "Habit Master", BadgeDescription: "Earned 5,000 XP", BadgeImage: "award"},
	{LevelNumber: 9, XPRequired: 7500, Title: "Grandmaster", BadgeName: "Grandmaster", BadgeDescription: "Earned 7,500 XP", BadgeImage: "award"},
	{LevelNumber: 10, XPRequired: 10000, Title: "Legend", BadgeName: "Living Legend", BadgeDescription: "Earned 10,000 XP", BadgeImage: "award"},
}

func SeedLevels(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Level{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Levels already seeded, skipping")
		return nil
	}

	levels := make([]models.Level, len(DefaultLevels))
	copy(levels, DefaultLevels)
	if err := conn.Create(&levels).Error; err != nil {
		return fmt.Errorf("seed levels: %w", err)
	}
	logger.Info("Initial levels created", "count", len(levels))
	return nil
}
