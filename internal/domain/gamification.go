// Package domain holds the core types shared by every layer.
// The gamification engine drives user retention through points, levels,
// streaks, badges, and a single-slot notification mailbox.
package domain

import "time"

// ─── Level Types ────────────────────────────────────────────────────────────

// UnboundedPoints marks the terminal level's open-ended range.
const UnboundedPoints = -1

// Level is a named tier derived purely from cumulative points.
// Ranges are contiguous: MinPoints of level N+1 equals MaxPoints of level N.
// The terminal level has MaxPoints == UnboundedPoints.
type Level struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	MinPoints int    `json:"min_points"`
	MaxPoints int    `json:"max_points"`
}

// Terminal reports whether this level's range is open-ended.
func (l Level) Terminal() bool {
	return l.MaxPoints == UnboundedPoints
}

// ─── Badge Types ────────────────────────────────────────────────────────────

// Badge is a one-time-unlockable achievement flag. The catalog is fixed;
// only UnlockedAt changes, and at most once (never re-locked).
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// Unlocked reports whether the badge has been earned.
func (b Badge) Unlocked() bool {
	return b.UnlockedAt != nil
}

// ─── Points History ─────────────────────────────────────────────────────────

// PointsEntry records a single point award. Entries are append-only and
// immutable; the engine retains only the most recent ones.
type PointsEntry struct {
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ─── Gamification State ─────────────────────────────────────────────────────

// GamificationState is the per-user root entity and the unit of durability.
// Invariants after every mutation:
//   - Level always equals the level derived from Points.
//   - Points never decrease.
//   - Streak only decreases via an explicit reset.
//   - Each badge unlocks at most once.
//   - len(PointsHistory) never exceeds the history cap.
//
// The pending notification is deliberately NOT part of this struct: it is
// transient presentation state and never persisted.
type GamificationState struct {
	Points         int           `json:"points"`
	Level          int           `json:"level"`
	Streak         int           `json:"streak"`
	LastActiveDate string        `json:"last_active_date,omitempty"` // YYYY-MM-DD
	Badges         []Badge       `json:"badges"`
	PointsHistory  []PointsEntry `json:"points_history"`
}

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType tags the notification payload variant.
type NotificationType string

const (
	NotifyPoints NotificationType = "points"
	NotifyBadge  NotificationType = "badge"
	NotifyLevel  NotificationType = "level"
)

// Notification is the single-slot, last-write-wins message describing the
// most recent noteworthy state change, awaiting display. Exactly one of the
// payload fields is set, matching Type.
type Notification struct {
	Type   NotificationType `json:"type"`
	Amount int              `json:"amount,omitempty"`
	Reason string           `json:"reason,omitempty"`
	Badge  *Badge           `json:"badge,omitempty"`
	Level  *Level           `json:"level,omitempty"`
}
