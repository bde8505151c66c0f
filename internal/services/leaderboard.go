package services

import (
	"context"
	"sort"
	"time"

	"habitlink/internal/models"
	"habitlink/internal/repository"
)

type LeaderboardMetric string

const (
	MetricXP         LeaderboardMetric = "xp"
	MetricLevel      LeaderboardMetric = "level"
	MetricStreak     LeaderboardMetric = "streak"
	MetricHabits     LeaderboardMetric = "habits"
	MetricGoals      LeaderboardMetric = "goals"
	MetricChallenges LeaderboardMetric = "challenges"
)

var LeaderboardMetrics = []LeaderboardMetric{MetricXP, MetricLevel, MetricStreak, MetricHabits, MetricGoals, MetricChallenges}

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

func ParseMetric(s string) (LeaderboardMetric, error) {
	if s == "" {
		return MetricXP, nil
	}
	for _, m := range LeaderboardMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", models.NewValidationError("Unknown leaderboard category: " + s)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		return MaxLeaderboardLimit
	}
	return limit
}

// RankEntries sorts by value descending with ties broken by ascending user
// id, assigns 1-based ranks and truncates to limit.
func RankEntries(entries []models.LeaderboardEntry, limit int) []models.LeaderboardEntry {
	limit = normalizeLimit(limit)
	sorted := make([]models.LeaderboardEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].UserID < sorted[j].UserID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	for i := range sorted {
		sorted[i].Rank = i + 1
	}
	return sorted
}

type LeaderboardService struct {
	repo    repository.LeaderboardRepository
	friends repository.FriendRepository
	loc     *time.Location
	now     func() time.Time
}

func NewLeaderboardService(repo repository.LeaderboardRepository, friends repository.FriendRepository, loc *time.Location) *LeaderboardService {
	if loc == nil {
		loc = time.Local
	}
	return &LeaderboardService{repo: repo, friends: friends, loc: loc, now: time.Now}
}

// Rank orders every opted-in user by metric.
func (s *LeaderboardService) Rank(ctx context.Context, metric LeaderboardMetric, limit int) ([]models.LeaderboardEntry, error) {
	return s.rank(ctx, metric, limit, nil)
}

// FriendsLeaderboard ranks userID together with their friends.
func (s *LeaderboardService) FriendsLeaderboard(ctx context.Context, userID uint, metric LeaderboardMetric, limit int) ([]models.LeaderboardEntry, error) {
	ids, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, metric, limit, append(ids, userID))
}

func (s *LeaderboardService) rank(ctx context.Context, metric LeaderboardMetric, limit int, only []uint) ([]models.LeaderboardEntry, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	users, err := s.repo.Candidates(ctx, only)
	if err != nil {
		return nil, err
	}
	values, err := s.values(ctx, metric, users)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, models.LeaderboardEntry{
			UserID:   u.ID,
			Username: u.Username,
			Avatar:   u.Avatar,
			Value:    values[u.ID],
		})
	}
	return RankEntries(entries, limit), nil
}

func (s *LeaderboardService) values(ctx context.Context, metric LeaderboardMetric, users []models.User) (map[uint]int, error) {
	values := make(map[uint]int, len(users))
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	switch metric {
	case MetricXP:
		for _, u := range users {
			values[u.ID] = u.XP
		}
	case MetricLevel:
		for _, u := range users {
			values[u.ID] = u.Level
		}
	case MetricStreak:
		times, err := s.repo.CompletionTimes(ctx, ids)
		if err != nil {
			return nil, err
		}
		now := s.now()
		for id, ts := range times {
			values[id] = CurrentStreak(ts, now, s.loc)
		}
	default:
		counts, err := s.repo.Counts(ctx, string(metric), ids)
		if err != nil {
			return nil, err
		}
		values = counts
	}
	return values, nil
}
