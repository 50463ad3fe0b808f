package gamification

import (
	"time"

	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/infra/metrics"
)

// The notification mailbox is a single slot with last-write-wins semantics:
// a new notification published before the previous one was cleared simply
// overwrites it. Presentation reads the slot (or subscribes) and clears it
// after display.

// Peek returns a copy of the pending notification, or nil if the slot is
// empty.
func (e *Engine) Peek() *domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	n := *e.pending
	return &n
}

// ClearNotification empties the slot. Presentation calls this after display
// so stale content is not re-shown on the next read.
func (e *Engine) ClearNotification() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
	if e.clearTimer != nil {
		e.clearTimer.Stop()
		e.clearTimer = nil
	}
}

// Subscribe registers an observer for published notifications. The returned
// cancel func detaches it. Slow observers miss notifications rather than
// block a mutation.
func (e *Engine) Subscribe() (<-chan domain.Notification, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan domain.Notification, 8)
	if e.closed {
		close(ch)
		return ch, func() {}
	}
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// publishLocked fills the slot, fans out to subscribers, and re-arms the
// auto-clear timer when one is configured.
func (e *Engine) publishLocked(n domain.Notification) {
	e.pending = &n
	e.gen++
	metrics.NotificationsPublished.WithLabelValues(string(n.Type)).Inc()

	for _, ch := range e.subs {
		select {
		case ch <- n:
		default:
		}
	}

	if e.clearTimer != nil {
		e.clearTimer.Stop()
		e.clearTimer = nil
	}
	if e.cfg.NotificationTTL > 0 {
		gen := e.gen
		e.clearTimer = time.AfterFunc(e.cfg.NotificationTTL, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			// A newer publish re-armed its own timer; this one is stale.
			if e.closed || e.gen != gen {
				return
			}
			e.pending = nil
			e.clearTimer = nil
		})
	}
}

// scheduleLevelNotifyLocked publishes the level-up notification after the
// configured delay so the points toast shows first. The timer is cancellable
// and follows the same last-write-wins slot semantics: whatever is in the
// slot when the delay elapses gets overwritten.
func (e *Engine) scheduleLevelNotifyLocked(level int) {
	def := LevelByNumber(level)
	notif := domain.Notification{Type: domain.NotifyLevel, Level: &def}

	if e.levelTimer != nil {
		e.levelTimer.Stop()
		e.levelTimer = nil
	}
	if e.cfg.LevelUpDelay <= 0 {
		e.publishLocked(notif)
		return
	}
	e.levelTimer = time.AfterFunc(e.cfg.LevelUpDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed {
			return
		}
		e.levelTimer = nil
		e.publishLocked(notif)
	})
}
