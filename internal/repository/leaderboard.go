package repository

import (
	"context"
	"fmt"
	"time"

	"habitlink/internal/models"

	"gorm.io/gorm"
)

// LeaderboardRepository reads the raw values the ranker orders.
type LeaderboardRepository interface {
	// Candidates returns users who opted into leaderboards. A nil only
	// slice means every user, otherwise the result is restricted to it.
	Candidates(ctx context.Context, only []uint) ([]models.User, error)
	// Counts returns per-user totals for "habits", "goals" or "challenges".
	Counts(ctx context.Context, metric string, userIDs []uint) (map[uint]int, error)
	CompletionTimes(ctx context.Context, userIDs []uint) (map[uint][]time.Time, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) Candidates(ctx context.Context, only []uint) ([]models.User, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN user_settings ON user_settings.user_id = users.id").
		Where("user_settings.show_in_leaderboards = ?", true)
	if only != nil {
		if len(only) == 0 {
			return nil, nil
		}
		q = q.Where("users.id IN ?", only)
	}
	var users []models.User
	if err := q.Order("users.id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

type userCount struct {
	UserID uint
	Total  int
}

func (r *leaderboardRepository) Counts(ctx context.Context, metric string, userIDs []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	q := r.db.WithContext(ctx).Select("user_id, COUNT(*) AS total").Group("user_id")
	switch metric {
	case "habits":
		q = q.Model(&models.HabitCompletion{}).Where("user_id IN ?", userIDs)
	case "goals":
		q = q.Model(&models.Goal{}).Where("user_id IN ? AND is_completed = ?", userIDs, true)
	case "challenges":
		q = q.Model(&models.ChallengeParticipant{}).Where("user_id IN ? AND is_completed = ?", userIDs, true)
	default:
		return nil, models.NewInternalError(fmt.Errorf("no count query for metric %q", metric))
	}

	var rows []userCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.UserID] = row.Total
	}
	return out, nil
}

func (r *leaderboardRepository) CompletionTimes(ctx context.Context, userIDs []uint) (map[uint][]time.Time, error) {
	out := make(map[uint][]time.Time, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []models.HabitCompletion
	if err := r.db.WithContext(ctx).
		Select("user_id", "completed_at").
		Where("user_id IN ?", userIDs).
		Order("completed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.CompletedAt)
	}
	return out, nil
}
