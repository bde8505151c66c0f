package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"habitlink/internal/db"
	"habitlink/internal/handlers"
	"habitlink/internal/middleware"
	"habitlink/internal/models"
	"habitlink/internal/repository"
	"habitlink/internal/services"
	"habitlink/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const captchaSeed = 42

type nopMailer struct{}

func (nopMailer) SendFriendRequestEmail(string, string, string) {}
func (nopMailer) SendLevelUpEmail(string, int, string)          {}

type testServer struct {
	*httptest.Server
	store  *repository.Store
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	store := repository.NewStore(conn)

	notifier := services.NewNotifier(store.Notifications, store.Settings, nopMailer{}, "http://example.test")
	xp := services.NewXPService(store.Levels, store.XP, store.Users, notifier, time.Minute)
	friends := services.NewFriendService(store.Friends, store.Users, store.Settings, notifier)
	visibility := services.NewVisibilityService(store.Settings, friends)
	activity := services.NewActivityService(store.Activity, store.Settings, store.Users, friends, xp, notifier, time.UTC)
	achievements := services.NewAchievementService(store.Activity, store.Levels, store.Users, xp, time.UTC)
	leaderboard := services.NewLeaderboardService(store.Leaderboard, store.Friends, time.UTC)
	profiles := services.NewProfileService(store.Users, store.Settings, store.Activity, friends, visibility, xp, achievements, activity)

	r := gin.New()
	r.Use(sessions.Sessions("habitlink_test", cookie.NewStore([]byte("test-secret"))))
	renderer, err := LoadTemplates("../../web/templates")
	require.NoError(t, err)
	r.HTMLRender = renderer
	r.Use(middleware.LoadUser(store.Users, store.Notifications))

	RegisterRoutes(r, Handlers{
		Auth:          handlers.NewAuthHandler(store.Users, services.NewSeededCaptchaService(captchaSeed)),
		Activity:      handlers.NewActivityHandler(activity, xp, time.UTC),
		Community:     handlers.NewCommunityHandler(friends, profiles, leaderboard),
		Achievements:  handlers.NewAchievementHandler(achievements),
		Settings:      handlers.NewSettingsHandler(services.NewSettingsService(store.Settings), profiles),
		Notifications: handlers.NewNotificationHandler(store.Notifications),
	}, FriendRequestLimit{
		Limiter: middleware.NewRateLimiter(nil),
		Max:     2,
		Window:  time.Minute,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, store: store, client: newClient(t)}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *testServer) createUser(t *testing.T, name, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: name, Email: name + "@example.com", Password: hash}
	require.NoError(t, s.store.Users.Create(context.Background(), u))
	return u
}

func (s *testServer) login(t *testing.T, client *http.Client, email, password string) {
	t.Helper()
	res, err := client.PostForm(s.URL+"/login", url.Values{"email": {email}, "password": {password}})
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/dashboard", res.Header.Get("Location"))
}

func get(t *testing.T, client *http.Client, target string) (int, string) {
	t.Helper()
	res, err := client.Get(target)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func postJSON(t *testing.T, client *http.Client, target string) (int, models.Result) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	res, err := client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out models.Result
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestPublicPages(t *testing.T) {
	s := newTestServer(t)

	code, body := get(t, s.client, s.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get(t, s.client, s.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Build better habits")

	code, body = get(t, s.client, s.URL+"/login")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `action="/login"`)

	code, _ = get(t, s.client, s.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthRequiredRedirectsToLogin(t *testing.T) {
	s := newTestServer(t)

	res, err := s.client.Get(s.URL + "/dashboard")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	code, body := get(t, s.client, s.URL+"/signup")
	require.Equal(t, http.StatusOK, code)
	question, answer := services.NewSeededCaptchaService(captchaSeed).GenerateMathProblem()
	assert.Contains(t, body, question)

	res, err := s.client.PostForm(s.URL+"/signup", url.Values{
		"email":    {"newbie@example.com"},
		"password": {"secret123"},
		"captcha":  {itoa(answer)},
	})
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/dashboard", res.Header.Get("Location"))

	code, body = get(t, s.client, s.URL+"/dashboard")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "newbie")
	assert.Contains(t, body, "Welcome to Habitlink")

	t.Run("wrong captcha", func(t *testing.T) {
		client := newClient(t)
		_, _ = get(t, client, s.URL+"/signup")
		res, err := client.PostForm(s.URL+"/signup", url.Values{
			"email":    {"other@example.com"},
			"password": {"secret123"},
			"captcha":  {"-1"},
		})
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "password1")

	res, err := s.client.PostForm(s.URL+"/login", url.Values{"email": {"alice@example.com"}, "password": {"nope"}})
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, string(body), "Invalid email or password")
}

func TestDashboardFlow(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "password1")
	s.login(t, s.client, "alice@example.com", "password1")

	res, err := s.client.PostForm(s.URL+"/habits", url.Values{"title": {"Stretch"}})
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)

	code, body := get(t, s.client, s.URL+"/dashboard")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Stretch")

	for _, page := range []string{"/dashboard/xp", "/journal", "/achievements", "/community", "/community/requests", "/notifications", "/settings", "/settings?tab=privacy", "/settings?tab=appearance", "/settings?tab=notifications"} {
		code, _ := get(t, s.client, s.URL+page)
		assert.Equal(t, http.StatusOK, code, page)
	}
}

func TestFriendRequestsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice", "password1")
	bob := s.createUser(t, "bob", "password1")
	carol := s.createUser(t, "carol", "password1")
	s.createUser(t, "dave", "password1")
	s.login(t, s.client, "alice@example.com", "password1")

	code, res := postJSON(t, s.client, s.URL+"/community/friends/request/"+itoa(int(bob.ID)))
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Success)

	code, res = postJSON(t, s.client, s.URL+"/community/friends/request/"+itoa(int(alice.ID)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, res.Success)

	code, _ = postJSON(t, s.client, s.URL+"/community/friends/request/"+itoa(int(carol.ID)))
	assert.Equal(t, http.StatusTooManyRequests, code, "limit is two per window")

	bobClient := newClient(t)
	s.login(t, bobClient, "bob@example.com", "password1")
	incoming, err := s.store.Friends.GetIncoming(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	code, res = postJSON(t, bobClient, s.URL+"/community/requests/"+itoa(int(incoming[0].ID))+"/accept")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, res.Success)

	code, res = postJSON(t, bobClient, s.URL+"/community/requests/"+itoa(int(incoming[0].ID))+"/accept")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, models.CodeNotFound, res.Code)

	code, body := get(t, bobClient, s.URL+"/community")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "alice")
	assert.NotContains(t, body, "dave")
}

func TestProfilePrivacyOverHTTP(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice", "password1")
	s.createUser(t, "bob", "password1")

	ctx := context.Background()
	settings, err := s.store.Settings.Get(ctx, alice.ID)
	require.NoError(t, err)
	settings.ProfileVisibility = models.VisibilityMembers
	require.NoError(t, s.store.Settings.Save(ctx, settings))

	code, _ := get(t, newClient(t), s.URL+"/u/"+itoa(int(alice.ID)))
	assert.Equal(t, http.StatusForbidden, code, "visitors cannot see members-only profiles")

	s.login(t, s.client, "bob@example.com", "password1")
	code, body := get(t, s.client, s.URL+"/u/"+itoa(int(alice.ID)))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "Add friend")

	code, _ = get(t, s.client, s.URL+"/u/9999")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = get(t, s.client, s.URL+"/u/abc")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLeaderboardOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "password1")
	s.login(t, s.client, "alice@example.com", "password1")

	code, body := get(t, s.client, s.URL+"/community/leaderboard?category=xp")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "alice")

	code, _ = get(t, s.client, s.URL+"/community/leaderboard?category=karma")
	assert.Equal(t, http.StatusBadRequest, code)

	req, err := http.NewRequest(http.MethodGet, s.URL+"/community/leaderboard?scope=friends", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	res, err := s.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out models.Result
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.True(t, out.Success)
	entries, ok := out.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, entries, 1, "a user with no friends ranks alone")
}

func TestSettingsUpdateSetsThemeCookie(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "alice", "password1")
	s.login(t, s.client, "alice@example.com", "password1")

	res, err := s.client.PostForm(s.URL+"/settings/appearance", url.Values{"theme": {"dark"}, "color_scheme": {"teal"}})
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusFound, res.StatusCode)

	_, body := get(t, s.client, s.URL+"/dashboard")
	assert.True(t, strings.Contains(body, `data-bs-theme="dark"`))
	assert.Contains(t, body, "scheme-teal")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
