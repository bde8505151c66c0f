package services

import (
	"context"
	"strings"

	"habitlink/internal/models"
	"habitlink/internal/repository"
)

const searchLimit = 20

// ProfileView is everything the profile page renders. Gated sections are
// left nil when the viewer may not see them.
type ProfileView struct {
	User     *models.User
	Progress LevelProgress
	Access   *VisibilityDecision
	Settings *models.UserSettings

	IsOwner            bool
	IsFriend           bool
	HasSentRequest     bool
	HasReceivedRequest bool
	RequestID          uint
	FriendCount        int

	Habits       []models.Habit
	Goals        []models.Goal
	Challenges   *ChallengeLists
	Achievements []AchievementRule
}

type ProfileService struct {
	users        repository.UserRepository
	settings     repository.SettingsRepository
	activity     repository.ActivityRepository
	friends      *FriendService
	visibility   *VisibilityService
	xp           *XPService
	achievements *AchievementService
	acts         *ActivityService
}

func NewProfileService(users repository.UserRepository, settings repository.SettingsRepository, activity repository.ActivityRepository, friends *FriendService, visibility *VisibilityService, xp *XPService, achievements *AchievementService, acts *ActivityService) *ProfileService {
	return &ProfileService{
		users:        users,
		settings:     settings,
		activity:     activity,
		friends:      friends,
		visibility:   visibility,
		xp:           xp,
		achievements: achievements,
		acts:         acts,
	}
}

// GetUserProfile builds targetID's profile as seen by viewerID (0 for a
// visitor). A hidden profile is PRIVACY_DENIED.
func (s *ProfileService) GetUserProfile(ctx context.Context, targetID, viewerID uint) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	access, err := s.visibility.RequireView(ctx, targetID, viewerID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	progress, err := s.xp.Progress(ctx, user.XP)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:     user,
		Progress: progress,
		Access:   access,
		Settings: settings,
		IsOwner:  access.IsOwner,
	}

	status, requestID, err := s.friends.GetFriendshipStatus(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	view.IsFriend = status == models.FriendshipFriends
	view.HasSentRequest = status == models.FriendshipPendingSent
	view.HasReceivedRequest = status == models.FriendshipPendingReceived
	view.RequestID = requestID

	friends, err := s.friends.GetFriends(ctx, targetID)
	if err != nil {
		return nil, err
	}
	view.FriendCount = len(friends)

	if access.Can(SectionHabits) {
		if view.Habits, err = s.activity.ListHabits(ctx, targetID); err != nil {
			return nil, err
		}
	}
	if access.Can(SectionGoals) {
		if view.Goals, err = s.activity.ListGoals(ctx, targetID); err != nil {
			return nil, err
		}
	}
	if access.Can(SectionChallenges) {
		if view.Challenges, err = s.acts.Challenges(ctx, targetID); err != nil {
			return nil, err
		}
	}
	if access.Can(SectionAchievements) {
		h, err := s.activity.History(ctx, targetID)
		if err != nil {
			return nil, err
		}
		view.Achievements = EvaluateAchievements(h, s.achievements.loc)
	}
	return view, nil
}

// SearchUsers matches username or email, never returning the viewer.
func (s *ProfileService) SearchUsers(ctx context.Context, term string, viewerID uint) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	return s.users.Search(ctx, term, viewerID, searchLimit)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, username, avatar, bio string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.NewValidationError("Username is required")
	}
	if len([]rune(username)) > 30 {
		return models.NewValidationError("Username must be at most 30 characters")
	}
	if len([]rune(bio)) > 500 {
		return models.NewValidationError("Bio must be at most 500 characters")
	}
	return s.users.UpdateProfile(ctx, userID, username, strings.TrimSpace(avatar), strings.TrimSpace(bio))
}
