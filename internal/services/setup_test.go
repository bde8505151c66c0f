package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"habitlink/internal/db"
	"habitlink/internal/models"
	"habitlink/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingMailer struct {
	friendRequests []string
	levelUps       []int
}

func (m *recordingMailer) SendFriendRequestEmail(email, senderName, link string) {
	m.friendRequests = append(m.friendRequests, email)
}

func (m *recordingMailer) SendLevelUpEmail(email string, level int, title string) {
	m.levelUps = append(m.levelUps, level)
}

type testApp struct {
	db          *gorm.DB
	store       *repository.Store
	mailer      *recordingMailer
	notifier    *Notifier
	xp          *XPService
	friends     *FriendService
	visibility  *VisibilityService
	activity    *ActivityService
	achievement *AchievementService
	leaderboard *LeaderboardService
	profiles    *ProfileService
	settings    *SettingsService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)

	store := repository.NewStore(conn)
	mailer := &recordingMailer{}
	notifier := NewNotifier(store.Notifications, store.Settings, mailer, "http://localhost:8080")
	xp := NewXPService(store.Levels, store.XP, store.Users, notifier, time.Minute)
	friends := NewFriendService(store.Friends, store.Users, store.Settings, notifier)
	visibility := NewVisibilityService(store.Settings, friends)
	activity := NewActivityService(store.Activity, store.Settings, store.Users, friends, xp, notifier, time.UTC)
	achievement := NewAchievementService(store.Activity, store.Levels, store.Users, xp, time.UTC)

	return &testApp{
		db:          conn,
		store:       store,
		mailer:      mailer,
		notifier:    notifier,
		xp:          xp,
		friends:     friends,
		visibility:  visibility,
		activity:    activity,
		achievement: achievement,
		leaderboard: NewLeaderboardService(store.Leaderboard, store.Friends, time.UTC),
		profiles:    NewProfileService(store.Users, store.Settings, store.Activity, friends, visibility, xp, achievement, activity),
		settings:    NewSettingsService(store.Settings),
	}
}

func (a *testApp) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: fmt.Sprintf("%s@example.com", name), Password: "x"}
	require.NoError(t, a.store.Users.Create(context.Background(), u))
	return u
}

func (a *testApp) befriend(t *testing.T, u1, u2 *models.User) {
	t.Helper()
	ctx := context.Background()
	req, err := a.friends.SendFriendRequest(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	_, err = a.friends.AcceptFriendRequest(ctx, req.ID, u2.ID)
	require.NoError(t, err)
}

func (a *testApp) updateSettings(t *testing.T, userID uint, fn func(s *models.UserSettings)) {
	t.Helper()
	ctx := context.Background()
	s, err := a.store.Settings.Get(ctx, userID)
	require.NoError(t, err)
	fn(s)
	require.NoError(t, a.store.Settings.Save(ctx, s))
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}
