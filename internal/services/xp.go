package services

import (
	"context"
	"time"

	"habitlink/internal/logger"
	"habitlink/internal/metrics"
	"habitlink/internal/models"
	"habitlink/internal/repository"
	"habitlink/internal/utils"
)

const levelTableKey = "levels"

// XP reasons written to the ledger.
const (
	ReasonHabitCompleted     = "Completed habit: "
	ReasonGoalCompleted      = "Completed goal: "
	ReasonChallengeCompleted = "Completed challenge: "
	ReasonJournalEntry       = "Journal entry"
)

// XPService owns the XP ledger: it is the only writer of User.XP and User.Level.
type XPService struct {
	levels   repository.LevelRepository
	xp       repository.XPRepository
	users    repository.UserRepository
	notifier *Notifier
	cache    *utils.Cache[*LevelTable]
	ttl      time.Duration
}

func NewXPService(levels repository.LevelRepository, xp repository.XPRepository, users repository.UserRepository, notifier *Notifier, ttl time.Duration) *XPService {
	cache, err := utils.NewCache[*LevelTable](4)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &XPService{levels: levels, xp: xp, users: users, notifier: notifier, cache: cache, ttl: ttl}
}

// Table returns the level table, served from cache while fresh.
func (s *XPService) Table(ctx context.Context) (*LevelTable, error) {
	if t, ok := s.cache.Get(levelTableKey); ok {
		return t, nil
	}
	rows, err := s.levels.List(ctx)
	if err != nil {
		return nil, err
	}
	t, err := NewLevelTable(rows)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.cache.Set(levelTableKey, t, s.ttl)
	return t, nil
}

// AwardXP adds a positive amount to the user's XP and recomputes the level.
// The writes commit in the same transaction, so a failed award leaves none
// of them behind.
func (s *XPService) AwardXP(ctx context.Context, userID uint, amount int, reason string, writes ...repository.TxWrite) (*models.XPAward, error) {
	if amount <= 0 {
		return nil, models.NewInvalidAmountError(amount)
	}
	table, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}

	award, err := s.xp.Award(ctx, userID, amount, reason, table.LevelOf, writes...)
	if err != nil {
		return nil, err
	}

	metrics.XPAwarded.Add(float64(amount))
	if award.LeveledUp() {
		metrics.LevelUps.Inc()
		logger.Info("User leveled up", "user_id", userID, "from", award.OldLevel, "to", award.NewLevel)
		if s.notifier != nil {
			if user, err := s.users.GetByID(ctx, userID); err == nil {
				s.notifier.LevelUp(ctx, user, table.Level(award.NewLevel))
			}
		}
	}
	return award, nil
}

func (s *XPService) Progress(ctx context.Context, xp int) (LevelProgress, error) {
	table, err := s.Table(ctx)
	if err != nil {
		return LevelProgress{}, err
	}
	return table.Progress(xp), nil
}

func (s *XPService) Logs(ctx context.Context, userID uint, limit int) ([]models.XPLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.xp.Logs(ctx, userID, limit)
}
