package services

import (
	"context"
	"slices"

	"habitlink/internal/models"
	"habitlink/internal/repository"
)

type AppearanceForm struct {
	Theme            string
	ColorScheme      string
	EnableAnimations bool
	CompactMode      bool
}

type NotificationForm struct {
	EmailNotifications     bool
	HabitReminders         bool
	GoalUpdates            bool
	ChallengeNotifications bool
	LevelUpNotifications   bool
	EmailDaily             bool
	EmailWeekly            bool
	EmailReminders         bool
}

// PrivacyForm carries the privacy page. PublicProfile is the legacy
// checkbox and only counts when ProfileVisibility is empty.
type PrivacyForm struct {
	ProfileVisibility     models.ProfileVisibility
	PublicProfile         bool
	ShowStats             bool
	ShowHabits            bool
	ShowGoals             bool
	ShowChallenges        bool
	ShowAchievements      bool
	ShowInLeaderboards    bool
	AllowFriendRequests   bool
	AllowChallengeInvites bool
	AnalyticsConsent      bool
}

type SettingsService struct {
	settings repository.SettingsRepository
}

func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context, userID uint) (*models.UserSettings, error) {
	return s.settings.Get(ctx, userID)
}

func (s *SettingsService) UpdateAppearance(ctx context.Context, userID uint, form AppearanceForm) (*models.UserSettings, error) {
	if !slices.Contains(models.Themes, form.Theme) {
		return nil, models.NewValidationError("Unknown theme: " + form.Theme)
	}
	if !slices.Contains(models.ColorSchemes, form.ColorScheme) {
		return nil, models.NewValidationError("Unknown color scheme: " + form.ColorScheme)
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.Theme = form.Theme
	settings.ColorScheme = form.ColorScheme
	settings.EnableAnimations = form.EnableAnimations
	settings.CompactMode = form.CompactMode
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateNotifications stores the flags. The email digests cannot be on
// while email notifications are off.
func (s *SettingsService) UpdateNotifications(ctx context.Context, userID uint, form NotificationForm) (*models.UserSettings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !form.EmailNotifications {
		form.EmailDaily = false
		form.EmailWeekly = false
		form.EmailReminders = false
	}
	settings.EmailNotifications = form.EmailNotifications
	settings.HabitReminders = form.HabitReminders
	settings.GoalUpdates = form.GoalUpdates
	settings.ChallengeNotifications = form.ChallengeNotifications
	settings.LevelUpNotifications = form.LevelUpNotifications
	settings.EmailDaily = form.EmailDaily
	settings.EmailWeekly = form.EmailWeekly
	settings.EmailReminders = form.EmailReminders
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdatePrivacy stores the privacy flags. The legacy public flag always
// follows the stored visibility level and is only taken from the form for
// rows that have no level yet.
func (s *SettingsService) UpdatePrivacy(ctx context.Context, userID uint, form PrivacyForm) (*models.UserSettings, error) {
	if form.ProfileVisibility != models.VisibilityUnset && !form.ProfileVisibility.Valid() {
		return nil, models.NewValidationError("Unknown profile visibility: " + string(form.ProfileVisibility))
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if form.ProfileVisibility != models.VisibilityUnset {
		settings.ProfileVisibility = form.ProfileVisibility
	}
	if settings.ProfileVisibility != models.VisibilityUnset {
		settings.PublicProfile = settings.ProfileVisibility == models.VisibilityPublic
	} else {
		settings.PublicProfile = form.PublicProfile
	}
	settings.ShowStats = form.ShowStats
	settings.ShowHabits = form.ShowHabits
	settings.ShowGoals = form.ShowGoals
	settings.ShowChallenges = form.ShowChallenges
	settings.ShowAchievements = form.ShowAchievements
	settings.ShowInLeaderboards = form.ShowInLeaderboards
	settings.AllowFriendRequests = form.AllowFriendRequests
	settings.AllowChallengeInvites = form.AllowChallengeInvites
	settings.AnalyticsConsent = form.AnalyticsConsent
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
