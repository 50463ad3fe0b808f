// Package gamification implements the points/level/badge/streak engine.
// All state transitions are synchronous and atomic per user; the only
// asynchrony is time-deferred notification publishing.
package gamification

import (
	"math"

	"github.com/cocinafacil/tcf/internal/domain"
)

// Point awards by trigger. Streak bonuses fire on exact streak equality,
// not thresholds — that is a contract, not an oversight.
const (
	PointsOnboarding        = 100
	PointsMenuGenerated     = 50
	PointsMealCompleted     = 10
	PointsDayCompleted      = 25
	PointsWeekCompleted     = 100
	PointsHealthySubstitute = 15
	PointsStreak7           = 50
	PointsStreak30          = 200
)

// Award reasons recorded in history and shown in notifications.
const (
	ReasonOnboarding        = "onboarding complete"
	ReasonMenuGenerated     = "menu generated"
	ReasonMealCompleted     = "meal completed"
	ReasonDayCompleted      = "day completed"
	ReasonWeekCompleted     = "week completed"
	ReasonHealthySubstitute = "healthy substitute"
	ReasonStreak7           = "7-day streak"
	ReasonStreak30          = "30-day streak"
)

// MaxLevel is the terminal level number.
const MaxLevel = 5

// levels is the static level table. Ranges are contiguous and
// non-overlapping; the terminal level is unbounded.
var levels = []domain.Level{
	{Number: 1, Name: "Pinche", Icon: "🥄", MinPoints: 0, MaxPoints: 500},
	{Number: 2, Name: "Cocinero", Icon: "🍳", MinPoints: 500, MaxPoints: 1500},
	{Number: 3, Name: "Chef", Icon: "👨‍🍳", MinPoints: 1500, MaxPoints: 3500},
	{Number: 4, Name: "Chef Ejecutivo", Icon: "⭐", MinPoints: 3500, MaxPoints: 7000},
	{Number: 5, Name: "Master Chef", Icon: "👑", MinPoints: 7000, MaxPoints: domain.UnboundedPoints},
}

// Levels returns a copy of the level table (for display).
func Levels() []domain.Level {
	out := make([]domain.Level, len(levels))
	copy(out, levels)
	return out
}

// LevelByNumber returns the definition for a level number, clamped to the
// table bounds.
func LevelByNumber(n int) domain.Level {
	if n < 1 {
		return levels[0]
	}
	if n > MaxLevel {
		return levels[MaxLevel-1]
	}
	return levels[n-1]
}

// CalculateLevel returns the level number for a points total. Scans from
// highest to lowest and returns the first level whose floor is reached;
// defaults to level 1 (negative points cannot occur, but the function must
// still answer).
func CalculateLevel(points int) int {
	for i := len(levels) - 1; i >= 0; i-- {
		if points >= levels[i].MinPoints {
			return levels[i].Number
		}
	}
	return 1
}

// LevelProgress returns progress through the current level as 0–100.
// The terminal level always reports 100 — there is no further bar to fill.
func LevelProgress(points int) int {
	lvl := LevelByNumber(CalculateLevel(points))
	if lvl.Terminal() {
		return 100
	}
	span := lvl.MaxPoints - lvl.MinPoints
	pct := int(math.Round(float64(points-lvl.MinPoints) / float64(span) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}
