package router

import (
	"time"

	"habitlink/internal/handlers"
	"habitlink/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers is everything RegisterRoutes mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Activity      *handlers.ActivityHandler
	Community     *handlers.CommunityHandler
	Achievements  *handlers.AchievementHandler
	Settings      *handlers.SettingsHandler
	Notifications *handlers.NotificationHandler
}

// FriendRequestLimit guards the send-request endpoint.
type FriendRequestLimit struct {
	Limiter *middleware.RateLimiter
	Max     int
	Window  time.Duration
}

func RegisterRoutes(r *gin.Engine, h Handlers, frl FriendRequestLimit) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })

	// Public
	r.GET("/", h.Activity.Home)
	r.GET("/u/:id", h.Community.Profile)

	r.GET("/signup", h.Auth.ShowRegister)
	r.POST("/signup", h.Auth.Register)
	r.GET("/captcha", h.Auth.RefreshCaptcha)
	r.GET("/login", h.Auth.ShowLogin)
	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)

	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/dashboard", h.Activity.Dashboard)
		authorized.GET("/dashboard/xp", h.Activity.XPHistory)
		authorized.GET("/achievements", h.Achievements.Show)

		authorized.POST("/habits", h.Activity.CreateHabit)
		authorized.POST("/habits/:id/complete", h.Activity.CompleteHabit)
		authorized.POST("/goals", h.Activity.CreateGoal)
		authorized.POST("/goals/:id/complete", h.Activity.CompleteGoal)
		authorized.POST("/challenges", h.Activity.CreateChallenge)
		authorized.POST("/challenges/:id/join", h.Activity.JoinChallenge)
		authorized.POST("/challenges/:id/complete", h.Activity.CompleteChallenge)
		authorized.POST("/challenges/:id/invite/:user_id", h.Activity.InviteToChallenge)
		authorized.GET("/journal", h.Activity.Journal)
		authorized.POST("/journal", h.Activity.CreateJournalEntry)

		authorized.GET("/notifications", h.Notifications.List)
		authorized.POST("/notifications/:id/read", h.Notifications.Read)
		authorized.DELETE("/notifications/:id", h.Notifications.Delete)
		authorized.POST("/notifications/read-all", h.Notifications.ReadAll)

		authorized.GET("/settings", h.Settings.Show)
		authorized.POST("/settings/profile", h.Settings.UpdateProfile)
		authorized.POST("/settings/appearance", h.Settings.UpdateAppearance)
		authorized.POST("/settings/notifications", h.Settings.UpdateNotifications)
		authorized.POST("/settings/privacy", h.Settings.UpdatePrivacy)
	}

	community := r.Group("/community")
	community.Use(middleware.AuthRequired())
	{
		community.GET("", h.Community.Index)
		community.GET("/search", h.Community.Search)
		community.GET("/requests", h.Community.Requests)
		community.GET("/leaderboard", h.Community.Leaderboard)

		send := []gin.HandlerFunc{h.Community.SendRequest}
		if frl.Limiter != nil && frl.Max > 0 {
			send = append([]gin.HandlerFunc{frl.Limiter.RateLimit("friend_request", frl.Max, frl.Window)}, send...)
		}
		community.POST("/friends/request/:id", send...)
		community.POST("/requests/:id/accept", h.Community.AcceptRequest)
		community.POST("/requests/:id/reject", h.Community.RejectRequest)
		community.POST("/friends/:id/remove", h.Community.RemoveFriend)
	}
}
