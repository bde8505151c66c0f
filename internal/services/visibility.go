package services

import (
	"context"

	"habitlink/internal/models"
	"habitlink/internal/repository"
)

type ProfileSection string

const (
	SectionHabits       ProfileSection = "habits"
	SectionGoals        ProfileSection = "goals"
	SectionChallenges   ProfileSection = "challenges"
	SectionAchievements ProfileSection = "achievements"
)

var ProfileSections = []ProfileSection{SectionHabits, SectionGoals, SectionChallenges, SectionAchievements}

// CanView decides whether viewerID may see ownerID's profile. A viewerID of
// 0 is an anonymous visitor. isFriend is only consulted for the friends level.
func CanView(settings *models.UserSettings, ownerID, viewerID uint, isFriend bool) bool {
	if viewerID != 0 && viewerID == ownerID {
		return true
	}
	switch settings.ProfileVisibility {
	case models.VisibilityPrivate:
		return false
	case models.VisibilityFriends:
		return viewerID != 0 && isFriend
	case models.VisibilityMembers:
		return viewerID != 0
	case models.VisibilityPublic:
		return true
	default:
		return settings.PublicProfile
	}
}

func sectionFlag(settings *models.UserSettings, section ProfileSection) bool {
	switch section {
	case SectionHabits:
		return settings.ShowHabits
	case SectionGoals:
		return settings.ShowGoals
	case SectionChallenges:
		return settings.ShowChallenges
	case SectionAchievements:
		return settings.ShowAchievements
	}
	return false
}

// CanViewSection applies the section's show flag on top of CanView. Owners
// always see their own sections.
func CanViewSection(settings *models.UserSettings, ownerID, viewerID uint, isFriend bool, section ProfileSection) bool {
	if viewerID != 0 && viewerID == ownerID {
		return true
	}
	return CanView(settings, ownerID, viewerID, isFriend) && sectionFlag(settings, section)
}

// needsFriendship reports whether the decision depends on the friendship edge.
func needsFriendship(settings *models.UserSettings, ownerID, viewerID uint) bool {
	return settings.ProfileVisibility == models.VisibilityFriends && viewerID != 0 && viewerID != ownerID
}

type FriendChecker interface {
	AreFriends(ctx context.Context, userID1, userID2 uint) (bool, error)
}

// VisibilityDecision is the full gate for one (owner, viewer) pair.
type VisibilityDecision struct {
	OwnerID  uint
	ViewerID uint
	IsOwner  bool
	Profile  bool
	Sections map[ProfileSection]bool
}

func (d *VisibilityDecision) Can(section ProfileSection) bool {
	return d.Sections[section]
}

type VisibilityService struct {
	settings repository.SettingsRepository
	friends  FriendChecker
}

func NewVisibilityService(settings repository.SettingsRepository, friends FriendChecker) *VisibilityService {
	return &VisibilityService{settings: settings, friends: friends}
}

// Decide loads the owner's settings and evaluates every gate. The
// friendship graph is only queried when the visibility level needs it.
func (s *VisibilityService) Decide(ctx context.Context, ownerID, viewerID uint) (*VisibilityDecision, error) {
	settings, err := s.settings.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	isFriend := false
	if needsFriendship(settings, ownerID, viewerID) {
		if isFriend, err = s.friends.AreFriends(ctx, ownerID, viewerID); err != nil {
			return nil, err
		}
	}

	d := &VisibilityDecision{
		OwnerID:  ownerID,
		ViewerID: viewerID,
		IsOwner:  viewerID != 0 && viewerID == ownerID,
		Profile:  CanView(settings, ownerID, viewerID, isFriend),
		Sections: make(map[ProfileSection]bool, len(ProfileSections)),
	}
	for _, section := range ProfileSections {
		d.Sections[section] = CanViewSection(settings, ownerID, viewerID, isFriend, section)
	}
	return d, nil
}

// RequireView is Decide that turns a hidden profile into PRIVACY_DENIED.
func (s *VisibilityService) RequireView(ctx context.Context, ownerID, viewerID uint) (*VisibilityDecision, error) {
	d, err := s.Decide(ctx, ownerID, viewerID)
	if err != nil {
		return nil, err
	}
	if !d.Profile {
		return nil, models.NewPrivacyDeniedError("This profile is private")
	}
	return d, nil
}
