package gamification

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/infra/metrics"
)

// historyLimit bounds the points history: a ring of recent evidence, not a
// full ledger. The oldest entry is evicted once the cap is crossed.
const historyLimit = 50

// dateLayout is the calendar-day format for streak arithmetic. Streaks
// compare dates, not instants.
const dateLayout = "2006-01-02"

// Config tunes the engine's timing behavior.
type Config struct {
	// LevelUpDelay separates the points toast from the level-up toast so
	// they display sequentially instead of overwriting each other at once.
	// Zero or negative publishes the level notification immediately.
	LevelUpDelay time.Duration

	// NotificationTTL auto-clears the mailbox after display. Zero leaves
	// clearing to the consumer.
	NotificationTTL time.Duration

	// Now supplies the clock. Tests inject a fixed clock here.
	Now func() time.Time
}

// DefaultConfig returns the standard timing: 1500ms level-up delay,
// 3000ms notification auto-clear.
func DefaultConfig() Config {
	return Config{
		LevelUpDelay:    1500 * time.Millisecond,
		NotificationTTL: 3000 * time.Millisecond,
		Now:             time.Now,
	}
}

// Engine owns one user's gamification state. Every mutation is a single
// atomic transition under the mutex, persisted to the StateStore before the
// call returns. The engine has no ambient global state: each user session
// gets its own instance via the Service registry.
type Engine struct {
	userID string
	store  domain.StateStore
	cfg    Config

	mu      sync.Mutex
	state   domain.GamificationState
	pending *domain.Notification
	gen     uint64 // publish generation, guards stale auto-clear timers

	levelTimer *time.Timer
	clearTimer *time.Timer

	subs    map[int]chan domain.Notification
	nextSub int
	closed  bool
}

// NewEngine creates an engine with the default timing config.
func NewEngine(userID string, store domain.StateStore) *Engine {
	return NewEngineWithConfig(userID, store, DefaultConfig())
}

// NewEngineWithConfig creates an engine, loading persisted state. A missing
// or corrupt stored state falls back to the documented defaults —
// gamification is non-critical and must not block startup.
func NewEngineWithConfig(userID string, store domain.StateStore, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	e := &Engine{
		userID: userID,
		store:  store,
		cfg:    cfg,
		subs:   make(map[int]chan domain.Notification),
	}

	state, err := store.LoadState(userID)
	if err != nil {
		log.Printf("[gamification] load state for %s: %v (using defaults)", userID, err)
		state = nil
	}
	if state == nil {
		e.state = defaultState()
	} else {
		e.state = restore(*state)
	}
	return e
}

// defaultState is the first-use state: zero points, level 1, no streak,
// the full catalog locked.
func defaultState() domain.GamificationState {
	return domain.GamificationState{
		Points:        0,
		Level:         1,
		Streak:        0,
		Badges:        BadgeCatalog(),
		PointsHistory: []domain.PointsEntry{},
	}
}

// restore reconciles a loaded state against the current catalog and
// invariants: the level is rederived from points, unknown stored badges are
// dropped, catalog badges missing from storage are added locked, and the
// history is clamped to its cap.
func restore(s domain.GamificationState) domain.GamificationState {
	s.Level = CalculateLevel(s.Points)

	unlocked := make(map[string]*time.Time, len(s.Badges))
	for _, b := range s.Badges {
		if b.Unlocked() {
			unlocked[b.ID] = b.UnlockedAt
		}
	}
	s.Badges = BadgeCatalog()
	for i := range s.Badges {
		if at, ok := unlocked[s.Badges[i].ID]; ok {
			s.Badges[i].UnlockedAt = at
		}
	}

	if n := len(s.PointsHistory); n > historyLimit {
		s.PointsHistory = append([]domain.PointsEntry(nil), s.PointsHistory[n-historyLimit:]...)
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	return s
}

// ─── Point Awards ───────────────────────────────────────────────────────────

// AddPoints awards points for a reason. The amount must be positive: points
// are monotonically non-decreasing. One atomic transition updates points,
// rederives the level, appends bounded history, publishes a points
// notification, schedules the deferred level-up notification when the level
// rose, and unlocks the masterchef badge on first arrival at the top level.
func (e *Engine) AddPoints(amount int, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addPointsLocked(amount, reason)
}

func (e *Engine) addPointsLocked(amount int, reason string) error {
	if e.closed {
		return domain.ErrEngineClosed
	}
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidPointAmount, amount)
	}

	oldLevel := e.state.Level
	e.state.Points += amount
	e.state.Level = CalculateLevel(e.state.Points)

	e.state.PointsHistory = append(e.state.PointsHistory, domain.PointsEntry{
		Amount:    amount,
		Reason:    reason,
		Timestamp: e.cfg.Now(),
	})
	if n := len(e.state.PointsHistory); n > historyLimit {
		e.state.PointsHistory = append([]domain.PointsEntry(nil), e.state.PointsHistory[n-historyLimit:]...)
	}

	metrics.PointsAwarded.WithLabelValues(reason).Add(float64(amount))
	e.publishLocked(domain.Notification{Type: domain.NotifyPoints, Amount: amount, Reason: reason})

	// Multi-level jumps produce a single comparison: only the final level
	// is announced.
	if e.state.Level > oldLevel {
		metrics.LevelUps.Inc()
		e.scheduleLevelNotifyLocked(e.state.Level)
	}
	if e.state.Level == MaxLevel && oldLevel < MaxLevel {
		e.unlockBadgeLocked(BadgeMasterChef)
	}

	return e.persistLocked()
}

// ─── Badge Unlocks ──────────────────────────────────────────────────────────

// UnlockBadge unlocks a catalog badge. Unknown ids are silently ignored to
// tolerate catalog drift. Re-unlocking keeps the original timestamp and
// does not re-notify.
func (e *Engine) UnlockBadge(badgeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEngineClosed
	}
	if !e.unlockBadgeLocked(badgeID) {
		return nil
	}
	return e.persistLocked()
}

// unlockBadgeLocked reports whether the badge transitioned locked→unlocked.
func (e *Engine) unlockBadgeLocked(badgeID string) bool {
	for i := range e.state.Badges {
		if e.state.Badges[i].ID != badgeID {
			continue
		}
		if e.state.Badges[i].Unlocked() {
			return false
		}
		at := e.cfg.Now()
		e.state.Badges[i].UnlockedAt = &at

		metrics.BadgesUnlocked.WithLabelValues(badgeID).Inc()
		b := e.state.Badges[i]
		e.publishLocked(domain.Notification{Type: domain.NotifyBadge, Badge: &b})
		return true
	}
	return false
}

// ─── Streak Engine ──────────────────────────────────────────────────────────

// CheckDailyLogin runs once per session start. First-ever login starts the
// streak at 1; a repeat visit on the same calendar day is a no-op; the next
// calendar day extends the streak; a gap of more than one day resets and
// restarts at 1 (never observably left at 0).
func (e *Engine) CheckDailyLogin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEngineClosed
	}

	today := e.cfg.Now().Format(dateLayout)

	if e.state.LastActiveDate == "" {
		e.state.LastActiveDate = today
		e.state.Streak = 1
		return e.persistLocked()
	}

	diff, err := daysBetween(e.state.LastActiveDate, today)
	if err != nil {
		// Corrupt stored date — restart the streak rather than fail.
		log.Printf("[gamification] bad last_active_date %q for %s: %v", e.state.LastActiveDate, e.userID, err)
		e.state.LastActiveDate = today
		e.state.Streak = 1
		return e.persistLocked()
	}

	switch {
	case diff <= 0:
		// Same calendar day (or a clock that moved backwards) — no-op.
		return nil
	case diff == 1:
		return e.incrementStreakLocked()
	default:
		e.resetStreakLocked()
		metrics.StreakResets.Inc()
		e.state.Streak = 1
		e.state.LastActiveDate = today
		return e.persistLocked()
	}
}

// IncrementStreak extends the streak by one day. Bonuses fire on exact
// equality: a streak arriving at exactly 7 awards the weekly bonus, exactly
// 30 awards the monthly bonus and unlocks the consistency badge.
func (e *Engine) IncrementStreak() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEngineClosed
	}
	return e.incrementStreakLocked()
}

func (e *Engine) incrementStreakLocked() error {
	e.state.Streak++
	e.state.LastActiveDate = e.cfg.Now().Format(dateLayout)

	switch e.state.Streak {
	case 7:
		return e.addPointsLocked(PointsStreak7, ReasonStreak7)
	case 30:
		if err := e.addPointsLocked(PointsStreak30, ReasonStreak30); err != nil {
			return err
		}
		if e.unlockBadgeLocked(BadgeConsistent) {
			return e.persistLocked()
		}
		return nil
	}
	return e.persistLocked()
}

// ResetStreak zeroes the streak counter.
func (e *Engine) ResetStreak() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return domain.ErrEngineClosed
	}
	e.resetStreakLocked()
	return e.persistLocked()
}

func (e *Engine) resetStreakLocked() {
	e.state.Streak = 0
}

// daysBetween returns whole calendar days from a to b (both YYYY-MM-DD).
func daysBetween(a, b string) (int, error) {
	from, err := time.ParseInLocation(dateLayout, a, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", a, err)
	}
	to, err := time.ParseInLocation(dateLayout, b, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", b, err)
	}
	return int(to.Sub(from).Hours() / 24), nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────
// All reads observe committed values: mutations hold the same mutex, so
// every observer sees the same state.

// Points returns the current points balance.
func (e *Engine) Points() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Points
}

// Level returns the current level number.
func (e *Engine) Level() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Level
}

// CurrentLevel returns the current level's definition.
func (e *Engine) CurrentLevel() domain.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return LevelByNumber(e.state.Level)
}

// Progress returns progress through the current level (0–100).
func (e *Engine) Progress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return LevelProgress(e.state.Points)
}

// Streak returns the consecutive-day login counter.
func (e *Engine) Streak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Streak
}

// LastActiveDate returns the last qualifying login day (YYYY-MM-DD), or ""
// before the first login.
func (e *Engine) LastActiveDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.LastActiveDate
}

// Badges returns a copy of the badge set.
func (e *Engine) Badges() []domain.Badge {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Badge, len(e.state.Badges))
	copy(out, e.state.Badges)
	return out
}

// History returns a copy of the bounded points history, oldest first.
func (e *Engine) History() []domain.PointsEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.PointsEntry, len(e.state.PointsHistory))
	copy(out, e.state.PointsHistory)
	return out
}

// Summary is the aggregate view served to dashboards.
type Summary struct {
	Points         int          `json:"points"`
	Level          domain.Level `json:"level"`
	Progress       int          `json:"progress"`
	Streak         int          `json:"streak"`
	LastActiveDate string       `json:"last_active_date,omitempty"`
	BadgesUnlocked int          `json:"badges_unlocked"`
	BadgesTotal    int          `json:"badges_total"`
}

// Snapshot returns the aggregate view in one consistent read.
func (e *Engine) Snapshot() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	unlocked := 0
	for _, b := range e.state.Badges {
		if b.Unlocked() {
			unlocked++
		}
	}
	return Summary{
		Points:         e.state.Points,
		Level:          LevelByNumber(e.state.Level),
		Progress:       LevelProgress(e.state.Points),
		Streak:         e.state.Streak,
		LastActiveDate: e.state.LastActiveDate,
		BadgesUnlocked: unlocked,
		BadgesTotal:    len(e.state.Badges),
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// persistLocked saves the whole state — the unit of durability — after
// every mutation.
func (e *Engine) persistLocked() error {
	if err := e.store.SaveState(e.userID, e.state); err != nil {
		return fmt.Errorf("save gamification state: %w", err)
	}
	return nil
}

// Close cancels scheduled timers and detaches subscribers. Callbacks that
// would fire after teardown must not mutate a disposed engine.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.levelTimer != nil {
		e.levelTimer.Stop()
		e.levelTimer = nil
	}
	if e.clearTimer != nil {
		e.clearTimer.Stop()
		e.clearTimer = nil
	}
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
}
