package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"habitlink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityService_CompleteHabit(t *testing.T) {
	ctx := context.Background()

	t.Run("awards xp once per day", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		habit, err := app.activity.CreateHabit(ctx, u.ID, "  Read  ", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "Read", habit.Title)
		assert.Equal(t, models.DefaultHabitXP, habit.XPReward)

		res, err := app.activity.CompleteHabit(ctx, u.ID, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, res.XPAwarded)
		assert.False(t, res.LeveledUp)
		assert.Equal(t, "Habit marked as complete! You earned 10 XP.", res.Message)

		_, err = app.activity.CompleteHabit(ctx, u.ID, habit.ID)
		requireCode(t, err, models.CodeAlreadyExists)

		habits, err := app.activity.Habits(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, habits, 1)
		assert.True(t, habits[0].CompletedToday)
	})

	t.Run("next day is allowed again", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		habit, err := app.activity.CreateHabit(ctx, u.ID, "Run", "", 120)
		require.NoError(t, err)

		day := time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC)
		app.activity.now = func() time.Time { return day }
		res, err := app.activity.CompleteHabit(ctx, u.ID, habit.ID)
		require.NoError(t, err)
		assert.True(t, res.LeveledUp)
		assert.Equal(t, "Habit marked as complete! You earned 120 XP. Congratulations! You leveled up to level 2!", res.Message)

		app.activity.now = func() time.Time { return day.AddDate(0, 0, 1) }
		res, err = app.activity.CompleteHabit(ctx, u.ID, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 240, res.NewTotal)
	})

	t.Run("other users' habits are off limits", func(t *testing.T) {
		app := newTestApp(t)
		alice, bob := app.user(t, "alice"), app.user(t, "bob")
		habit, err := app.activity.CreateHabit(ctx, alice.ID, "Read", "", 0)
		require.NoError(t, err)

		_, err = app.activity.CompleteHabit(ctx, bob.ID, habit.ID)
		requireCode(t, err, models.CodeNotAuthorized)
		_, err = app.activity.CompleteHabit(ctx, bob.ID, 999)
		requireCode(t, err, models.CodeNotFound)
	})

	t.Run("blank title", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		_, err := app.activity.CreateHabit(ctx, u.ID, "   ", "", 0)
		requireCode(t, err, models.CodeValidation)
	})
}

func TestActivityService_Goals(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	u := app.user(t, "alice")

	goal, err := app.activity.CreateGoal(ctx, u.ID, "Ship it", "", 0)
	require.NoError(t, err)

	res, err := app.activity.CompleteGoal(ctx, u.ID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGoalXP, res.XPAwarded)

	_, err = app.activity.CompleteGoal(ctx, u.ID, goal.ID)
	requireCode(t, err, models.CodeAlreadyExists)
}

func TestActivityService_Challenges(t *testing.T) {
	ctx := context.Background()

	t.Run("join and complete", func(t *testing.T) {
		app := newTestApp(t)
		alice, bob := app.user(t, "alice"), app.user(t, "bob")
		ch, err := app.activity.CreateChallenge(ctx, alice.ID, "30 days", "", 0, time.Time{}, time.Time{})
		require.NoError(t, err)

		_, err = app.activity.CompleteChallenge(ctx, bob.ID, ch.ID)
		requireCode(t, err, models.CodeNotAuthorized)

		require.NoError(t, app.activity.JoinChallenge(ctx, bob.ID, ch.ID))
		err = app.activity.JoinChallenge(ctx, bob.ID, ch.ID)
		requireCode(t, err, models.CodeAlreadyExists)

		res, err := app.activity.CompleteChallenge(ctx, bob.ID, ch.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultChallengeXP, res.XPAwarded)
		assert.True(t, res.LeveledUp)

		lists, err := app.activity.Challenges(ctx, bob.ID)
		require.NoError(t, err)
		assert.Len(t, lists.Completed, 1)
		assert.Empty(t, lists.Active)

		lists, err = app.activity.Challenges(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, lists.Active, 1, "creator is enrolled")
		assert.Len(t, lists.Created, 1)
	})

	t.Run("end before start", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
		_, err := app.activity.CreateChallenge(ctx, u.ID, "Bad", "", 0, start, start.AddDate(0, 0, -1))
		requireCode(t, err, models.CodeValidation)
	})
}

func TestActivityService_InviteToChallenge(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	alice, bob, carol := app.user(t, "alice"), app.user(t, "bob"), app.user(t, "carol")
	ch, err := app.activity.CreateChallenge(ctx, alice.ID, "Plank", "", 0, time.Time{}, time.Time{})
	require.NoError(t, err)

	err = app.activity.InviteToChallenge(ctx, ch.ID, alice.ID, bob.ID)
	requireCode(t, err, models.CodeNotAuthorized)

	app.befriend(t, alice, bob)
	app.befriend(t, alice, carol)

	require.NoError(t, app.activity.InviteToChallenge(ctx, ch.ID, alice.ID, bob.ID))
	err = app.activity.InviteToChallenge(ctx, ch.ID, alice.ID, bob.ID)
	requireCode(t, err, models.CodeAlreadyExists)

	list, err := app.store.Notifications.List(ctx, bob.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, models.NotificationTypeChallengeInvite, list[0].Type)

	app.updateSettings(t, carol.ID, func(s *models.UserSettings) { s.AllowChallengeInvites = false })
	err = app.activity.InviteToChallenge(ctx, ch.ID, alice.ID, carol.ID)
	requireCode(t, err, models.CodeRecipientNotAccepting)

	require.NoError(t, app.activity.JoinChallenge(ctx, bob.ID, ch.ID))
	app.updateSettings(t, carol.ID, func(s *models.UserSettings) { s.AllowChallengeInvites = true })
	require.NoError(t, app.activity.JoinChallenge(ctx, carol.ID, ch.ID))
	err = app.activity.InviteToChallenge(ctx, ch.ID, alice.ID, carol.ID)
	requireCode(t, err, models.CodeAlreadyExists)
}

func TestActivityService_InviteRespectsChallengeNotifications(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	alice, bob := app.user(t, "alice"), app.user(t, "bob")
	app.befriend(t, alice, bob)
	ch, err := app.activity.CreateChallenge(ctx, alice.ID, "Plank", "", 0, time.Time{}, time.Time{})
	require.NoError(t, err)

	app.updateSettings(t, bob.ID, func(s *models.UserSettings) { s.ChallengeNotifications = false })
	require.NoError(t, app.activity.InviteToChallenge(ctx, ch.ID, alice.ID, bob.ID))

	list, err := app.store.Notifications.List(ctx, bob.ID, 10)
	require.NoError(t, err)
	for _, n := range list {
		assert.NotEqual(t, models.NotificationTypeChallengeInvite, n.Type)
	}
	pending, err := app.store.Activity.HasPendingInvite(ctx, ch.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, pending, "the invite itself is still stored")
}

func TestActivityService_AwardFailureKeepsNothing(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("x", 100)

	count := func(t *testing.T, app *testApp, model interface{}, where string, args ...interface{}) int64 {
		t.Helper()
		var n int64
		require.NoError(t, app.db.Model(model).Where(where, args...).Count(&n).Error)
		return n
	}
	breakLedger := func(t *testing.T, app *testApp) {
		t.Helper()
		require.NoError(t, app.db.Migrator().DropTable(&models.XPLog{}))
	}
	fixLedger := func(t *testing.T, app *testApp) {
		t.Helper()
		require.NoError(t, app.db.AutoMigrate(&models.XPLog{}))
	}
	xpOf := func(t *testing.T, app *testApp, id uint) int {
		t.Helper()
		u, err := app.store.Users.GetByID(ctx, id)
		require.NoError(t, err)
		return u.XP
	}

	t.Run("habit", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		habit, err := app.activity.CreateHabit(ctx, u.ID, long, "", 0)
		require.NoError(t, err)

		breakLedger(t, app)
		_, err = app.activity.CompleteHabit(ctx, u.ID, habit.ID)
		requireCode(t, err, models.CodeInternal)
		assert.Zero(t, count(t, app, &models.HabitCompletion{}, "habit_id = ?", habit.ID))
		assert.Zero(t, xpOf(t, app, u.ID))

		fixLedger(t, app)
		res, err := app.activity.CompleteHabit(ctx, u.ID, habit.ID)
		require.NoError(t, err, "retry must not report the habit as done")
		assert.Equal(t, models.DefaultHabitXP, res.NewTotal)

		logs, err := app.xp.Logs(ctx, u.ID, 1)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, ReasonHabitCompleted+long, logs[0].Reason)
	})

	t.Run("goal", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		goal, err := app.activity.CreateGoal(ctx, u.ID, long, "", 0)
		require.NoError(t, err)

		breakLedger(t, app)
		_, err = app.activity.CompleteGoal(ctx, u.ID, goal.ID)
		requireCode(t, err, models.CodeInternal)
		assert.Zero(t, count(t, app, &models.Goal{}, "id = ? AND is_completed = ?", goal.ID, true))

		fixLedger(t, app)
		_, err = app.activity.CompleteGoal(ctx, u.ID, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultGoalXP, xpOf(t, app, u.ID))
	})

	t.Run("challenge", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")
		ch, err := app.activity.CreateChallenge(ctx, u.ID, long, "", 0, time.Time{}, time.Time{})
		require.NoError(t, err)

		breakLedger(t, app)
		_, err = app.activity.CompleteChallenge(ctx, u.ID, ch.ID)
		requireCode(t, err, models.CodeInternal)
		assert.Zero(t, count(t, app, &models.ChallengeParticipant{}, "challenge_id = ? AND is_completed = ?", ch.ID, true))

		fixLedger(t, app)
		res, err := app.activity.CompleteChallenge(ctx, u.ID, ch.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultChallengeXP, res.NewTotal)

		logs, err := app.xp.Logs(ctx, u.ID, 1)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, ReasonChallengeCompleted+long, logs[0].Reason)
	})

	t.Run("journal", func(t *testing.T) {
		app := newTestApp(t)
		u := app.user(t, "alice")

		breakLedger(t, app)
		_, _, err := app.activity.AddJournalEntry(ctx, u.ID, "Today", "Went well")
		requireCode(t, err, models.CodeInternal)
		assert.Zero(t, count(t, app, &models.JournalEntry{}, "user_id = ?", u.ID))
	})
}

func TestActivityService_Journal(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	u := app.user(t, "alice")

	_, _, err := app.activity.AddJournalEntry(ctx, u.ID, "Today", " ")
	requireCode(t, err, models.CodeValidation)

	entry, res, err := app.activity.AddJournalEntry(ctx, u.ID, "Today", "Went **well**")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, models.JournalEntryXP, res.XPAwarded)

	entries, err := app.activity.Journal(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
