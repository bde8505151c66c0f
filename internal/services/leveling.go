package services

import (
	"fmt"
	"sort"

	"habitlink/internal/models"
)

// LevelTable is the validated, ascending threshold table.
type LevelTable struct {
	levels []models.Level
}

// NewLevelTable sorts levels and checks that numbering starts at 1, has no
// gaps and that XPRequired strictly increases with the level number.
func NewLevelTable(levels []models.Level) (*LevelTable, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("level table is empty")
	}
	sorted := make([]models.Level, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LevelNumber < sorted[j].LevelNumber })

	for i, l := range sorted {
		if l.LevelNumber != i+1 {
			return nil, fmt.Errorf("level numbers must start at 1 without gaps, found %d at position %d", l.LevelNumber, i+1)
		}
		if i > 0 && l.XPRequired <= sorted[i-1].XPRequired {
			return nil, fmt.Errorf("xp_required must strictly increase: level %d needs %d, level %d needs %d",
				sorted[i-1].LevelNumber, sorted[i-1].XPRequired, l.LevelNumber, l.XPRequired)
		}
	}
	return &LevelTable{levels: sorted}, nil
}

func (t *LevelTable) Levels() []models.Level {
	out := make([]models.Level, len(t.levels))
	copy(out, t.levels)
	return out
}

func (t *LevelTable) Max() int {
	return len(t.levels)
}

// Level returns the row for number n, clamped into the table's range.
func (t *LevelTable) Level(n int) models.Level {
	if n < 1 {
		n = 1
	}
	if n > len(t.levels) {
		n = len(t.levels)
	}
	return t.levels[n-1]
}

// LevelOf returns the greatest level whose requirement is met by xp. It is
// never below 1, even when the first row requires more than xp.
func (t *LevelTable) LevelOf(xp int) int {
	i := sort.Search(len(t.levels), func(i int) bool { return t.levels[i].XPRequired > xp })
	if i == 0 {
		return 1
	}
	return t.levels[i-1].LevelNumber
}

// LevelProgress describes where a user sits between two thresholds.
type LevelProgress struct {
	Level        int
	Title        string
	CurrentXP    int
	LevelFloorXP int
	// NextLevelXP and XPToNext are only meaningful when HasNext is true.
	NextLevelXP int
	XPToNext    int
	HasNext     bool
	Percent     int
}

func (t *LevelTable) Progress(xp int) LevelProgress {
	n := t.LevelOf(xp)
	cur := t.Level(n)
	p := LevelProgress{
		Level:        n,
		Title:        cur.Title,
		CurrentXP:    xp,
		LevelFloorXP: cur.XPRequired,
	}
	if n >= t.Max() {
		p.Percent = 100
		return p
	}

	next := t.levels[n]
	p.HasNext = true
	p.NextLevelXP = next.XPRequired
	p.XPToNext = next.XPRequired - xp
	span := next.XPRequired - cur.XPRequired
	gained := xp - cur.XPRequired
	if gained < 0 {
		gained = 0
	}
	p.Percent = gained * 100 / span
	return p
}
