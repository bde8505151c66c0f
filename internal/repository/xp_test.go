package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"habitlink/internal/db"
	"habitlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLevelOf(xp int) int {
	level := 1
	for _, l := range db.DefaultLevels {
		if l.XPRequired <= xp {
			level = l.LevelNumber
		}
	}
	return level
}

func TestXPRepository_Award(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()
	user := createUser(t, store, "dana")

	award, err := store.XP.Award(ctx, user.ID, 150, "Completed habit: Read", defaultLevelOf)
	require.NoError(t, err)
	assert.Equal(t, 0, award.OldXP)
	assert.Equal(t, 150, award.NewXP)
	assert.Equal(t, 1, award.OldLevel)
	assert.Equal(t, 2, award.NewLevel)
	assert.True(t, award.LeveledUp())
	assert.Equal(t, []int{2}, award.Unlocked)

	unlocked, err := store.Levels.Unlocked(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 2)
	firstUnlock := unlocked[1].UnlockedAt

	award, err = store.XP.Award(ctx, user.ID, 10, "Journal entry", defaultLevelOf)
	require.NoError(t, err)
	assert.Equal(t, 160, award.NewXP)
	assert.False(t, award.LeveledUp())
	assert.Empty(t, award.Unlocked)

	unlocked, err = store.Levels.Unlocked(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 2)
	assert.True(t, firstUnlock.Equal(unlocked[1].UnlockedAt), "unlock time must not be rewritten")

	reloaded, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 160, reloaded.XP)
	assert.Equal(t, 2, reloaded.Level)

	logs, err := store.XP.Logs(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Journal entry", logs[0].Reason)
}

func TestXPRepository_AwardSkipsLevels(t *testing.T) {
	store := NewStore(newTestDB(t))
	user := createUser(t, store, "erin")

	award, err := store.XP.Award(context.Background(), user.ID, 1200, "Imported", defaultLevelOf)
	require.NoError(t, err)
	assert.Equal(t, 5, award.NewLevel)
	assert.Equal(t, []int{2, 3, 4, 5}, award.Unlocked)
}

func TestXPRepository_AwardUnknownUser(t *testing.T) {
	store := NewStore(newTestDB(t))
	_, err := store.XP.Award(context.Background(), 4242, 10, "x", defaultLevelOf)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestXPRepository_AwardRollsBackWrites(t *testing.T) {
	conn := newTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()
	user := createUser(t, store, "gus")

	habit := &models.Habit{UserID: user.ID, Title: "Read", XPReward: 10}
	require.NoError(t, store.Activity.CreateHabit(ctx, habit))
	day := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	completion := &models.HabitCompletion{HabitID: habit.ID, UserID: user.ID, CompletedAt: day}

	// unknown user fails after the completion insert
	_, err := store.XP.Award(ctx, 4242, 10, "x", defaultLevelOf,
		store.Activity.RecordCompletion(completion, day.Truncate(24*time.Hour), day.Truncate(24*time.Hour).AddDate(0, 0, 1)))
	require.True(t, models.IsCode(err, models.CodeNotFound))

	var count int64
	require.NoError(t, conn.Model(&models.HabitCompletion{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestXPRepository_AwardPassesWriteErrors(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()
	user := createUser(t, store, "hal")

	goal := &models.Goal{UserID: user.ID, Title: "Run", XPReward: 50}
	require.NoError(t, store.Activity.CreateGoal(ctx, goal))

	_, err := store.XP.Award(ctx, user.ID, 50, "Completed goal: Run", defaultLevelOf, store.Activity.CompleteGoal(goal.ID, time.Now()))
	require.NoError(t, err)
	_, err = store.XP.Award(ctx, user.ID, 50, "Completed goal: Run", defaultLevelOf, store.Activity.CompleteGoal(goal.ID, time.Now()))
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists))

	reloaded, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, reloaded.XP)
}

func TestXPRepository_LongReason(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()
	user := createUser(t, store, "ivy")

	reason := "Completed challenge: " + strings.Repeat("x", 100)
	_, err := store.XP.Award(ctx, user.ID, 10, reason, defaultLevelOf)
	require.NoError(t, err)

	logs, err := store.XP.Logs(ctx, user.ID, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, reason, logs[0].Reason)
}

func TestUserRepository_CreateUnlocksFirstLevel(t *testing.T) {
	store := NewStore(newTestDB(t))
	user := createUser(t, store, "jo")

	unlocked, err := store.Levels.Unlocked(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, 1, unlocked[0].LevelNumber)
	assert.False(t, unlocked[0].UnlockedAt.IsZero())
}
