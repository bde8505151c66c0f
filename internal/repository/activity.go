package repository

import (
	"context"
	"errors"
	"time"

	"habitlink/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepository stores habits, goals, challenges and journal entries,
// the raw records achievements and leaderboards aggregate over.
type ActivityRepository interface {
	CreateHabit(ctx context.Context, habit *models.Habit) error
	GetHabit(ctx context.Context, id uint) (*models.Habit, error)
	ListHabits(ctx context.Context, userID uint) ([]models.Habit, error)
	CountHabitCompletions(ctx context.Context, habitID uint, from, to time.Time) (int64, error)
	// RecordCompletion fails with AlreadyExists when the habit already has a
	// completion in [from, to).
	RecordCompletion(completion *models.HabitCompletion, from, to time.Time) TxWrite
	CompletionTimes(ctx context.Context, userID uint) ([]time.Time, error)

	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, id uint) (*models.Goal, error)
	ListGoals(ctx context.Context, userID uint) ([]models.Goal, error)
	CompleteGoal(id uint, at time.Time) TxWrite

	// CreateChallenge also enrolls the creator.
	CreateChallenge(ctx context.Context, challenge *models.Challenge) error
	GetChallenge(ctx context.Context, id uint) (*models.Challenge, error)
	JoinChallenge(ctx context.Context, challengeID, userID uint) error
	GetParticipation(ctx context.Context, challengeID, userID uint) (*models.ChallengeParticipant, error)
	CompleteParticipation(id uint, at time.Time) TxWrite
	ListParticipations(ctx context.Context, userID uint) ([]models.ChallengeParticipant, error)
	ListCreatedChallenges(ctx context.Context, userID uint) ([]models.Challenge, error)
	CreateInvite(ctx context.Context, invite *models.ChallengeInvite) error
	HasPendingInvite(ctx context.Context, challengeID, recipientID uint) (bool, error)

	AddJournalEntry(entry *models.JournalEntry) TxWrite
	ListJournalEntries(ctx context.Context, userID uint, limit int) ([]models.JournalEntry, error)

	// History aggregates everything the achievement rules need.
	History(ctx context.Context, userID uint) (*models.ActivityHistory, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) create(ctx context.Context, value interface{}) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(value).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) first(ctx context.Context, dest interface{}, resource string, id uint) error {
	if err := r.db.WithContext(ctx).First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(resource, id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) CreateHabit(ctx context.Context, habit *models.Habit) error {
	return r.create(ctx, habit)
}

func (r *activityRepository) GetHabit(ctx context.Context, id uint) (*models.Habit, error) {
	var habit models.Habit
	if err := r.first(ctx, &habit, "Habit", id); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *activityRepository) ListHabits(ctx context.Context, userID uint) ([]models.Habit, error) {
	var habits []models.Habit
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&habits).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return habits, nil
}

func (r *activityRepository) CountHabitCompletions(ctx context.Context, habitID uint, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.HabitCompletion{}).
		Where("habit_id = ? AND completed_at >= ? AND completed_at < ?", habitID, from, to).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *activityRepository) RecordCompletion(completion *models.HabitCompletion, from, to time.Time) TxWrite {
	return func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.HabitCompletion{}).
			Where("habit_id = ? AND completed_at >= ? AND completed_at < ?", completion.HabitID, from, to).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewAlreadyExistsError("Habit already completed today")
		}
		return tx.Omit(clause.Associations).Create(completion).Error
	}
}

func (r *activityRepository) CompletionTimes(ctx context.Context, userID uint) ([]time.Time, error) {
	var times []time.Time
	if err := r.db.WithContext(ctx).Model(&models.HabitCompletion{}).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Pluck("completed_at", &times).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return times, nil
}

func (r *activityRepository) CreateGoal(ctx context.Context, goal *models.Goal) error {
	return r.create(ctx, goal)
}

func (r *activityRepository) GetGoal(ctx context.Context, id uint) (*models.Goal, error) {
	var goal models.Goal
	if err := r.first(ctx, &goal, "Goal", id); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *activityRepository) ListGoals(ctx context.Context, userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_completed ASC, created_at DESC, id DESC").
		Find(&goals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return goals, nil
}

// markCompleted flips is_completed once; a second call fails with AlreadyExists.
func markCompleted(model interface{}, id uint, at time.Time, already string) TxWrite {
	return func(tx *gorm.DB) error {
		res := tx.Model(model).
			Where("id = ? AND is_completed = ?", id, false).
			Updates(map[string]interface{}{"is_completed": true, "completed_at": at})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewAlreadyExistsError(already)
		}
		return nil
	}
}

func (r *activityRepository) CompleteGoal(id uint, at time.Time) TxWrite {
	return markCompleted(&models.Goal{}, id, at, "Goal is already completed")
}

func (r *activityRepository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(challenge).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&models.ChallengeParticipant{
			ChallengeID: challenge.ID,
			UserID:      challenge.CreatorID,
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) GetChallenge(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.first(ctx, &challenge, "Challenge", id); err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *activityRepository) JoinChallenge(ctx context.Context, challengeID, userID uint) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ChallengeParticipant{ChallengeID: challengeID, UserID: userID})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewAlreadyExistsError("You have already joined this challenge")
	}
	// joining settles any invite to it
	if err := r.db.WithContext(ctx).Model(&models.ChallengeInvite{}).
		Where("challenge_id = ? AND recipient_id = ? AND status = ?", challengeID, userID, models.FriendRequestPending).
		Update("status", models.FriendRequestAccepted).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityRepository) GetParticipation(ctx context.Context, challengeID, userID uint) (*models.ChallengeParticipant, error) {
	var p models.ChallengeParticipant
	if err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *activityRepository) CompleteParticipation(id uint, at time.Time) TxWrite {
	return markCompleted(&models.ChallengeParticipant{}, id, at, "Challenge is already completed")
}

func (r *activityRepository) ListParticipations(ctx context.Context, userID uint) ([]models.ChallengeParticipant, error) {
	var ps []models.ChallengeParticipant
	if err := r.db.WithContext(ctx).
		Preload("Challenge").
		Where("user_id = ?", userID).
		Order("joined_at DESC, id DESC").
		Find(&ps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ps, nil
}

func (r *activityRepository) ListCreatedChallenges(ctx context.Context, userID uint) ([]models.Challenge, error) {
	var cs []models.Challenge
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&cs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return cs, nil
}

func (r *activityRepository) CreateInvite(ctx context.Context, invite *models.ChallengeInvite) error {
	return r.create(ctx, invite)
}

func (r *activityRepository) HasPendingInvite(ctx context.Context, challengeID, recipientID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ChallengeInvite{}).
		Where("challenge_id = ? AND recipient_id = ? AND status = ?", challengeID, recipientID, models.FriendRequestPending).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *activityRepository) AddJournalEntry(entry *models.JournalEntry) TxWrite {
	return func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(entry).Error
	}
}

func (r *activityRepository) ListJournalEntries(ctx context.Context, userID uint, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *activityRepository) History(ctx context.Context, userID uint) (*models.ActivityHistory, error) {
	times, err := r.CompletionTimes(ctx, userID)
	if err != nil {
		return nil, err
	}

	var goals, challenges, journal int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Goal{}).Where("user_id = ? AND is_completed = ?", userID, true).Count(&goals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.ChallengeParticipant{}).Where("user_id = ? AND is_completed = ?", userID, true).Count(&challenges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := db.Model(&models.JournalEntry{}).Where("user_id = ?", userID).Count(&journal).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return &models.ActivityHistory{
		HabitCompletions:    times,
		CompletedGoals:      int(goals),
		CompletedChallenges: int(challenges),
		JournalEntries:      int(journal),
	}, nil
}
