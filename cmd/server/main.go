package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitlink/internal/config"
	"habitlink/internal/db"
	"habitlink/internal/handlers"
	"habitlink/internal/logger"
	"habitlink/internal/middleware"
	"habitlink/internal/repository"
	"habitlink/internal/router"
	"habitlink/internal/services"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", "error", err)
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	store := repository.NewStore(conn)

	// Services
	mailer := services.NewMailService(services.MailConfig{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		Username:     cfg.SMTPUser,
		Password:     cfg.SMTPPass,
		From:         cfg.SMTPFrom,
		TemplatesDir: cfg.TemplatesDir,
	})
	notifier := services.NewNotifier(store.Notifications, store.Settings, mailer, cfg.BaseURL)
	xp := services.NewXPService(store.Levels, store.XP, store.Users, notifier, cfg.LevelCacheTTL())
	friends := services.NewFriendService(store.Friends, store.Users, store.Settings, notifier)
	visibility := services.NewVisibilityService(store.Settings, friends)
	activity := services.NewActivityService(store.Activity, store.Settings, store.Users, friends, xp, notifier, loc)
	achievements := services.NewAchievementService(store.Activity, store.Levels, store.Users, xp, loc)
	leaderboard := services.NewLeaderboardService(store.Leaderboard, store.Friends, loc)
	profiles := services.NewProfileService(store.Users, store.Settings, store.Activity, friends, visibility, xp, achievements, activity)
	settings := services.NewSettingsService(store.Settings)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestMetrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	sessionStore := cookie.NewStore([]byte(cfg.SessionKey))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, sessionStore))

	renderer, err := router.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		logger.Fatal("Failed to load templates", "error", err)
	}
	r.HTMLRender = renderer
	r.Static("/static", cfg.StaticDir)

	r.Use(middleware.LoadUser(store.Users, store.Notifications))

	rdb := middleware.NewRedisClient(cfg.RedisURL)
	router.RegisterRoutes(r, router.Handlers{
		Auth:          handlers.NewAuthHandler(store.Users, services.NewCaptchaService()),
		Activity:      handlers.NewActivityHandler(activity, xp, loc),
		Community:     handlers.NewCommunityHandler(friends, profiles, leaderboard),
		Achievements:  handlers.NewAchievementHandler(achievements),
		Settings:      handlers.NewSettingsHandler(settings, profiles),
		Notifications: handlers.NewNotificationHandler(store.Notifications),
	}, router.FriendRequestLimit{
		Limiter: middleware.NewRateLimiter(rdb),
		Max:     cfg.FriendRequestLimit,
		Window:  cfg.FriendRequestWindow(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Habitlink server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
