package services

import (
	"context"
	"sort"
	"time"

	"habitlink/internal/models"
	"habitlink/internal/repository"
)

const (
	earlyBirdHour      = 9
	earlyBirdCount     = 5
	perfectionistDays  = 7
	goalCrusherGoals   = 10
	butterflyChallenge = 5
	deepThinkerEntries = 20
)

// AchievementRule is a named predicate over a user's activity. Rules are
// evaluated on demand and are never stored.
type AchievementRule struct {
	Name        string
	Description string
	Icon        string
	Color       string
	Unlocked    func(h *models.ActivityHistory, loc *time.Location) bool
}

// AchievementRules is the fixed rule set in display order.
var AchievementRules = []AchievementRule{
	{
		Name:        "Early Bird",
		Description: "Complete 5 habits before 9 AM",
		Icon:        "sunrise",
		Color:       "warning",
		Unlocked: func(h *models.ActivityHistory, loc *time.Location) bool {
			return MaxEarlyCompletions(h.HabitCompletions, loc, earlyBirdHour) >= earlyBirdCount
		},
	},
	{
		Name:        "Perfectionist",
		Description: "Complete all habits for 7 consecutive days",
		Icon:        "calendar-check",
		Color:       "success",
		Unlocked: func(h *models.ActivityHistory, loc *time.Location) bool {
			return LongestStreak(h.HabitCompletions, loc) >= perfectionistDays
		},
	},
	{
		Name:        "Goal Crusher",
		Description: "Complete 10 goals",
		Icon:        "bullseye",
		Color:       "danger",
		Unlocked: func(h *models.ActivityHistory, _ *time.Location) bool {
			return h.CompletedGoals >= goalCrusherGoals
		},
	},
	{
		Name:        "Social Butterfly",
		Description: "Join and complete 5 challenges",
		Icon:        "people",
		Color:       "primary",
		Unlocked: func(h *models.ActivityHistory, _ *time.Location) bool {
			return h.CompletedChallenges >= butterflyChallenge
		},
	},
	{
		Name:        "Deep Thinker",
		Description: "Write 20 journal entries",
		Icon:        "journal-text",
		Color:       "info",
		Unlocked: func(h *models.ActivityHistory, _ *time.Location) bool {
			return h.JournalEntries >= deepThinkerEntries
		},
	},
}

// EvaluateAchievements returns the unlocked rules in declaration order.
func EvaluateAchievements(h *models.ActivityHistory, loc *time.Location) []AchievementRule {
	if loc == nil {
		loc = time.Local
	}
	var unlocked []AchievementRule
	for _, rule := range AchievementRules {
		if rule.Unlocked(h, loc) {
			unlocked = append(unlocked, rule)
		}
	}
	return unlocked
}

// UnlockedNames is EvaluateAchievements reduced to a name set.
func UnlockedNames(h *models.ActivityHistory, loc *time.Location) map[string]bool {
	names := make(map[string]bool)
	for _, rule := range EvaluateAchievements(h, loc) {
		names[rule.Name] = true
	}
	return names
}

type day struct {
	y int
	m time.Month
	d int
}

func dayOf(t time.Time, loc *time.Location) day {
	y, m, d := t.In(loc).Date()
	return day{y, m, d}
}

func (d day) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// MaxEarlyCompletions returns the largest number of completions that fell
// on a single local calendar day strictly before hour:00.
func MaxEarlyCompletions(completions []time.Time, loc *time.Location, hour int) int {
	perDay := make(map[day]int)
	best := 0
	for _, c := range completions {
		local := c.In(loc)
		if local.Hour() >= hour {
			continue
		}
		d := dayOf(c, loc)
		perDay[d]++
		if perDay[d] > best {
			best = perDay[d]
		}
	}
	return best
}

// distinctDays returns the sorted distinct local dates of ts as UTC midnights,
// so consecutive dates are exactly 24h apart regardless of DST.
func distinctDays(ts []time.Time, loc *time.Location) []time.Time {
	seen := make(map[day]bool, len(ts))
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		d := dayOf(t, loc)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d.time())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// LongestStreak finds the longest run of consecutive calendar days with at
// least one completion, by walking the sorted distinct dates and resetting
// whenever the gap to the previous date is not exactly one day.
func LongestStreak(completions []time.Time, loc *time.Location) int {
	days := distinctDays(completions, loc)
	if len(days) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// CurrentStreak is the run ending today, or yesterday when nothing has been
// completed yet today.
func CurrentStreak(completions []time.Time, now time.Time, loc *time.Location) int {
	days := distinctDays(completions, loc)
	if len(days) == 0 {
		return 0
	}
	today := dayOf(now, loc).time()
	last := days[len(days)-1]
	if gap := today.Sub(last); gap != 0 && gap != 24*time.Hour {
		return 0
	}
	run := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) != 24*time.Hour {
			break
		}
		run++
	}
	return run
}

// LevelBadge is one row of the level achievements list.
type LevelBadge struct {
	Level      models.Level
	Unlocked   bool
	UnlockedAt *time.Time
	Icon       string
	Color      string
}

// SpecialAchievement pairs a rule with its state for one user.
type SpecialAchievement struct {
	AchievementRule
	Achieved bool
}

type AchievementsView struct {
	User     *models.User
	Progress LevelProgress
	Levels   []LevelBadge
	Special  []SpecialAchievement
}

type AchievementService struct {
	activity repository.ActivityRepository
	levels   repository.LevelRepository
	users    repository.UserRepository
	xp       *XPService
	loc      *time.Location
}

func NewAchievementService(activity repository.ActivityRepository, levels repository.LevelRepository, users repository.UserRepository, xp *XPService, loc *time.Location) *AchievementService {
	if loc == nil {
		loc = time.Local
	}
	return &AchievementService{activity: activity, levels: levels, users: users, xp: xp, loc: loc}
}

// Evaluate returns the names of the special achievements userID has earned.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint) (map[string]bool, error) {
	h, err := s.activity.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	return UnlockedNames(h, s.loc), nil
}

// ForUser builds the achievements page: persisted level badges plus the
// special rules evaluated against the current history.
func (s *AchievementService) ForUser(ctx context.Context, userID uint) (*AchievementsView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	table, err := s.xp.Table(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.levels.Unlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, err := s.activity.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	at := make(map[int]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.LevelNumber] = u.UnlockedAt
	}

	view := &AchievementsView{User: user, Progress: table.Progress(user.XP)}
	for _, l := range table.Levels() {
		icon, color := LevelIcon(l.LevelNumber)
		badge := LevelBadge{Level: l, Icon: icon, Color: color}
		if t, ok := at[l.LevelNumber]; ok {
			badge.Unlocked = true
			badge.UnlockedAt = &t
		}
		view.Levels = append(view.Levels, badge)
	}

	names := UnlockedNames(h, s.loc)
	for _, rule := range AchievementRules {
		view.Special = append(view.Special, SpecialAchievement{AchievementRule: rule, Achieved: names[rule.Name]})
	}
	return view, nil
}

// LevelIcon picks the badge icon and color for a level number.
func LevelIcon(level int) (icon, color string) {
	switch level {
	case 1:
		return "gem", "primary"
	case 2:
		return "star", "info"
	case 3:
		return "award", "warning"
	case 4:
		return "trophy", "danger"
	case 5:
		return "lightning", "success"
	default:
		return "award", "warning"
	}
}
