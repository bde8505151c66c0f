package repository

import (
	"context"
	"testing"
	"time"

	"habitlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_History(t *testing.T) {
	conn := newTestDB(t)
	store := NewStore(conn)
	repo := store.Activity
	ctx := context.Background()
	user := createUser(t, store, "finn")

	habit := &models.Habit{UserID: user.ID, Title: "Stretch", XPReward: 10}
	require.NoError(t, repo.CreateHabit(ctx, habit))
	day := time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := day.AddDate(0, 0, i)
		require.NoError(t, conn.Transaction(repo.RecordCompletion(&models.HabitCompletion{
			HabitID: habit.ID, UserID: user.ID, CompletedAt: at,
		}, at.Truncate(24*time.Hour), at.Truncate(24*time.Hour).AddDate(0, 0, 1))))
	}
	err := conn.Transaction(repo.RecordCompletion(&models.HabitCompletion{
		HabitID: habit.ID, UserID: user.ID, CompletedAt: day.Add(time.Hour),
	}, day.Truncate(24*time.Hour), day.Truncate(24*time.Hour).AddDate(0, 0, 1)))
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists), "one completion per day")

	goal := &models.Goal{UserID: user.ID, Title: "Run 5k", XPReward: 50}
	require.NoError(t, repo.CreateGoal(ctx, goal))
	require.NoError(t, conn.Transaction(repo.CompleteGoal(goal.ID, day)))
	err = conn.Transaction(repo.CompleteGoal(goal.ID, day))
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists), "second completion is rejected")

	challenge := &models.Challenge{CreatorID: user.ID, Title: "30 days", XPReward: 100}
	require.NoError(t, repo.CreateChallenge(ctx, challenge))
	p, err := repo.GetParticipation(ctx, challenge.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, p, "creator is enrolled")
	require.NoError(t, conn.Transaction(repo.CompleteParticipation(p.ID, day)))

	err = repo.JoinChallenge(ctx, challenge.ID, user.ID)
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists))

	require.NoError(t, conn.Transaction(repo.AddJournalEntry(&models.JournalEntry{UserID: user.ID, Title: "Day 1", Body: "*ok*"})))

	h, err := repo.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, h.HabitCompletions, 3)
	assert.Equal(t, 1, h.CompletedGoals)
	assert.Equal(t, 1, h.CompletedChallenges)
	assert.Equal(t, 1, h.JournalEntries)

	count, err := repo.CountHabitCompletions(ctx, habit.ID, day.Truncate(24*time.Hour), day.Truncate(24*time.Hour).Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLeaderboardRepository_RespectsOptOut(t *testing.T) {
	conn := newTestDB(t)
	store := NewStore(conn)
	ctx := context.Background()
	visible := createUser(t, store, "gina")
	hidden := createUser(t, store, "hank")

	settings, err := store.Settings.Get(ctx, hidden.ID)
	require.NoError(t, err)
	settings.ShowInLeaderboards = false
	require.NoError(t, store.Settings.Save(ctx, settings))

	users, err := store.Leaderboard.Candidates(ctx, nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, visible.ID, users[0].ID)

	users, err = store.Leaderboard.Candidates(ctx, []uint{})
	require.NoError(t, err)
	assert.Empty(t, users)

	habit := &models.Habit{UserID: visible.ID, Title: "Read", XPReward: 10}
	require.NoError(t, store.Activity.CreateHabit(ctx, habit))
	now := time.Now()
	for _, at := range []time.Time{now, now.AddDate(0, 0, -1)} {
		require.NoError(t, conn.Create(&models.HabitCompletion{HabitID: habit.ID, UserID: visible.ID, CompletedAt: at}).Error)
	}

	counts, err := store.Leaderboard.Counts(ctx, "habits", []uint{visible.ID, hidden.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[visible.ID])
	assert.Equal(t, 0, counts[hidden.ID])

	times, err := store.Leaderboard.CompletionTimes(ctx, []uint{visible.ID})
	require.NoError(t, err)
	assert.Len(t, times[visible.ID], 2)
}
