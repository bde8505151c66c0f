package handlers

import (
	"net/http"

	"habitlink/internal/models"
	"habitlink/internal/services"
	"habitlink/internal/utils"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settings *services.SettingsService
	profiles *services.ProfileService
}

func NewSettingsHandler(settings *services.SettingsService, profiles *services.ProfileService) *SettingsHandler {
	return &SettingsHandler{settings: settings, profiles: profiles}
}

func (h *SettingsHandler) Show(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "settings/index.html", gin.H{
		"Title":        "Settings",
		"Settings":     s,
		"Themes":       models.Themes,
		"ColorSchemes": models.ColorSchemes,
		"Visibilities": []models.ProfileVisibility{models.VisibilityPrivate, models.VisibilityFriends, models.VisibilityMembers, models.VisibilityPublic},
		"Emojis":       utils.GetCommonEmojis(),
		"Tab":          c.DefaultQuery("tab", "profile"),
	})
}

func checkbox(c *gin.Context, name string) bool {
	return utils.FormBool(c.PostForm(name))
}

// UpdateAppearance also mirrors theme and color scheme into cookies so
// pages render in the right theme before the user is loaded.
func (h *SettingsHandler) UpdateAppearance(c *gin.Context) {
	s, err := h.settings.UpdateAppearance(c.Request.Context(), currentUser(c).ID, services.AppearanceForm{
		Theme:            c.PostForm("theme"),
		ColorScheme:      c.PostForm("color_scheme"),
		EnableAnimations: checkbox(c, "enable_animations"),
		CompactMode:      checkbox(c, "compact_mode"),
	})
	if err != nil {
		flashError(c, err)
		c.Redirect(http.StatusFound, "/settings?tab=appearance")
		return
	}
	setPreferenceCookie(c, themeCookie, s.Theme)
	setPreferenceCookie(c, colorSchemeCookie, s.ColorScheme)
	flash(c, "success", "Appearance settings updated")
	c.Redirect(http.StatusFound, "/settings?tab=appearance")
}

func (h *SettingsHandler) UpdateNotifications(c *gin.Context) {
	_, err := h.settings.UpdateNotifications(c.Request.Context(), currentUser(c).ID, services.NotificationForm{
		EmailNotifications:     checkbox(c, "email_notifications"),
		HabitReminders:         checkbox(c, "habit_reminders"),
		GoalUpdates:            checkbox(c, "goal_updates"),
		ChallengeNotifications: checkbox(c, "challenge_notifications"),
		LevelUpNotifications:   checkbox(c, "level_up_notifications"),
		EmailDaily:             checkbox(c, "email_daily"),
		EmailWeekly:            checkbox(c, "email_weekly"),
		EmailReminders:         checkbox(c, "email_reminders"),
	})
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "Notification settings updated")
	}
	c.Redirect(http.StatusFound, "/settings?tab=notifications")
}

func (h *SettingsHandler) UpdatePrivacy(c *gin.Context) {
	_, err := h.settings.UpdatePrivacy(c.Request.Context(), currentUser(c).ID, services.PrivacyForm{
		ProfileVisibility:     models.ProfileVisibility(c.PostForm("profile_visibility")),
		PublicProfile:         checkbox(c, "public_profile"),
		ShowStats:             checkbox(c, "show_stats"),
		ShowHabits:            checkbox(c, "show_habits"),
		ShowGoals:             checkbox(c, "show_goals"),
		ShowChallenges:        checkbox(c, "show_challenges"),
		ShowAchievements:      checkbox(c, "show_achievements"),
		ShowInLeaderboards:    checkbox(c, "show_in_leaderboards"),
		AllowFriendRequests:   checkbox(c, "allow_friend_requests"),
		AllowChallengeInvites: checkbox(c, "allow_challenge_invites"),
		AnalyticsConsent:      checkbox(c, "analytics_consent"),
	})
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "Privacy settings updated")
	}
	c.Redirect(http.StatusFound, "/settings?tab=privacy")
}

func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	err := h.profiles.UpdateProfile(c.Request.Context(), currentUser(c).ID,
		c.PostForm("username"), c.PostForm("avatar"), c.PostForm("bio"))
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "Profile updated")
	}
	c.Redirect(http.StatusFound, "/settings?tab=profile")
}
