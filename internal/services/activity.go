package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"habitlink/internal/models"
	"habitlink/internal/repository"
)

// CompletionResult is what the page shows after an XP-earning action.
type CompletionResult struct {
	XPAwarded int
	NewTotal  int
	LeveledUp bool
	NewLevel  int
	Message   string
}

func completionResult(what string, award *models.XPAward) *CompletionResult {
	msg := fmt.Sprintf("%s You earned %d XP.", what, award.Amount)
	if award.LeveledUp() {
		msg += fmt.Sprintf(" Congratulations! You leveled up to level %d!", award.NewLevel)
	}
	return &CompletionResult{
		XPAwarded: award.Amount,
		NewTotal:  award.NewXP,
		LeveledUp: award.LeveledUp(),
		NewLevel:  award.NewLevel,
		Message:   msg,
	}
}

// HabitStatus is a habit with today's completion state.
type HabitStatus struct {
	models.Habit
	CompletedToday bool
}

// ChallengeLists splits a user's challenges the way the profile shows them.
type ChallengeLists struct {
	Active    []models.ChallengeParticipant
	Completed []models.ChallengeParticipant
	Created   []models.Challenge
}

type ActivityService struct {
	activity repository.ActivityRepository
	settings repository.SettingsRepository
	users    repository.UserRepository
	friends  FriendChecker
	xp       *XPService
	notifier *Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewActivityService(activity repository.ActivityRepository, settings repository.SettingsRepository, users repository.UserRepository, friends FriendChecker, xp *XPService, notifier *Notifier, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{
		activity: activity,
		settings: settings,
		users:    users,
		friends:  friends,
		xp:       xp,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *ActivityService) todayRange() (time.Time, time.Time) {
	now := s.now().In(s.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return startOfDay, startOfDay.AddDate(0, 0, 1)
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.NewValidationError("Title is required")
	}
	if len(title) > 100 {
		return "", models.NewValidationError("Title must be at most 100 characters")
	}
	return title, nil
}

func rewardOr(reward, fallback int) int {
	if reward <= 0 {
		return fallback
	}
	return reward
}

func (s *ActivityService) CreateHabit(ctx context.Context, userID uint, title, description string, xpReward int) (*models.Habit, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	habit := &models.Habit{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		XPReward:    rewardOr(xpReward, models.DefaultHabitXP),
	}
	if err := s.activity.CreateHabit(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *ActivityService) Habits(ctx context.Context, userID uint) ([]HabitStatus, error) {
	habits, err := s.activity.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	from, to := s.todayRange()
	out := make([]HabitStatus, 0, len(habits))
	for _, h := range habits {
		n, err := s.activity.CountHabitCompletions(ctx, h.ID, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, HabitStatus{Habit: h, CompletedToday: n > 0})
	}
	return out, nil
}

// CompleteHabit records today's completion and awards the habit's XP.
func (s *ActivityService) CompleteHabit(ctx context.Context, userID, habitID uint) (*CompletionResult, error) {
	habit, err := s.activity.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, models.NewNotAuthorizedError("You can only complete your own habits")
	}
	from, to := s.todayRange()
	completion := &models.HabitCompletion{
		HabitID:     habitID,
		UserID:      userID,
		CompletedAt: s.now(),
	}
	award, err := s.xp.AwardXP(ctx, userID, habit.XPReward, ReasonHabitCompleted+habit.Title,
		s.activity.RecordCompletion(completion, from, to))
	if err != nil {
		return nil, err
	}
	return completionResult("Habit marked as complete!", award), nil
}

func (s *ActivityService) CreateGoal(ctx context.Context, userID uint, title, description string, xpReward int) (*models.Goal, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	goal := &models.Goal{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		XPReward:    rewardOr(xpReward, models.DefaultGoalXP),
	}
	if err := s.activity.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *ActivityService) Goals(ctx context.Context, userID uint) ([]models.Goal, error) {
	return s.activity.ListGoals(ctx, userID)
}

func (s *ActivityService) CompleteGoal(ctx context.Context, userID, goalID uint) (*CompletionResult, error) {
	goal, err := s.activity.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, models.NewNotAuthorizedError("You can only complete your own goals")
	}
	award, err := s.xp.AwardXP(ctx, userID, goal.XPReward, ReasonGoalCompleted+goal.Title,
		s.activity.CompleteGoal(goalID, s.now()))
	if err != nil {
		return nil, err
	}
	return completionResult("Goal completed!", award), nil
}

func (s *ActivityService) CreateChallenge(ctx context.Context, userID uint, title, description string, xpReward int, start, end time.Time) (*models.Challenge, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	if !end.IsZero() && !start.IsZero() && end.Before(start) {
		return nil, models.NewValidationError("End date must be after start date")
	}
	challenge := &models.Challenge{
		CreatorID:   userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		XPReward:    rewardOr(xpReward, models.DefaultChallengeXP),
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.activity.CreateChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ActivityService) JoinChallenge(ctx context.Context, userID, challengeID uint) error {
	if _, err := s.activity.GetChallenge(ctx, challengeID); err != nil {
		return err
	}
	return s.activity.JoinChallenge(ctx, challengeID, userID)
}

func (s *ActivityService) CompleteChallenge(ctx context.Context, userID, challengeID uint) (*CompletionResult, error) {
	challenge, err := s.activity.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	p, err := s.activity.GetParticipation(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.NewNotAuthorizedError("Join the challenge before completing it")
	}
	award, err := s.xp.AwardXP(ctx, userID, challenge.XPReward, ReasonChallengeCompleted+challenge.Title,
		s.activity.CompleteParticipation(p.ID, s.now()))
	if err != nil {
		return nil, err
	}
	return completionResult("Challenge completed!", award), nil
}

func (s *ActivityService) Challenges(ctx context.Context, userID uint) (*ChallengeLists, error) {
	ps, err := s.activity.ListParticipations(ctx, userID)
	if err != nil {
		return nil, err
	}
	created, err := s.activity.ListCreatedChallenges(ctx, userID)
	if err != nil {
		return nil, err
	}
	lists := &ChallengeLists{Created: created}
	for _, p := range ps {
		if p.IsCompleted {
			lists.Completed = append(lists.Completed, p)
		} else {
			lists.Active = append(lists.Active, p)
		}
	}
	return lists, nil
}

// InviteToChallenge lets a user invite a friend who accepts invitations.
func (s *ActivityService) InviteToChallenge(ctx context.Context, challengeID, senderID, recipientID uint) error {
	challenge, err := s.activity.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	settings, err := s.settings.Get(ctx, recipientID)
	if err != nil {
		return err
	}
	if !settings.AllowChallengeInvites {
		return models.NewRecipientNotAcceptingError("This user is not accepting challenge invitations")
	}
	friends, err := s.friends.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return err
	}
	if !friends {
		return models.NewNotAuthorizedError("You can only invite friends to challenges")
	}
	p, err := s.activity.GetParticipation(ctx, challengeID, recipientID)
	if err != nil {
		return err
	}
	if p != nil {
		return models.NewAlreadyExistsError("This user is already participating in the challenge")
	}
	pending, err := s.activity.HasPendingInvite(ctx, challengeID, recipientID)
	if err != nil {
		return err
	}
	if pending {
		return models.NewAlreadyExistsError("This user has already been invited")
	}

	if err := s.activity.CreateInvite(ctx, &models.ChallengeInvite{
		ChallengeID: challengeID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.FriendRequestPending,
	}); err != nil {
		return err
	}
	if sender, err := s.users.GetByID(ctx, senderID); err == nil {
		s.notifier.ChallengeInvite(ctx, sender, recipientID, challenge)
	}
	return nil
}

func (s *ActivityService) AddJournalEntry(ctx context.Context, userID uint, title, body string) (*models.JournalEntry, *CompletionResult, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil, models.NewValidationError("Journal entry cannot be empty")
	}
	entry := &models.JournalEntry{UserID: userID, Title: title, Body: body}
	award, err := s.xp.AwardXP(ctx, userID, models.JournalEntryXP, ReasonJournalEntry,
		s.activity.AddJournalEntry(entry))
	if err != nil {
		return nil, nil, err
	}
	return entry, completionResult("Journal entry saved!", award), nil
}

func (s *ActivityService) Journal(ctx context.Context, userID uint, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.activity.ListJournalEntries(ctx, userID, limit)
}
