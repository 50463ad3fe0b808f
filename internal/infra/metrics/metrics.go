// Package metrics provides Prometheus metrics for the service — counters
// and histograms for gamification activity, menu generation, and the chef
// upstream.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Gamification ───────────────────────────────────────────────────────────

// PointsAwarded tracks total points granted by award reason.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "points_awarded_total",
	Help:      "Total points awarded.",
}, []string{"reason"})

// BadgesUnlocked tracks badge unlocks by badge id.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "badges_unlocked_total",
	Help:      "Total badges unlocked.",
}, []string{"badge"})

// LevelUps tracks level transitions.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "level_ups_total",
	Help:      "Total level-up transitions.",
})

// StreakResets tracks streaks broken by a login gap.
var StreakResets = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "streak_resets_total",
	Help:      "Total streaks broken by missed days.",
})

// NotificationsPublished tracks mailbox publishes by notification type.
var NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "notifications_published_total",
	Help:      "Total notifications published to the mailbox.",
}, []string{"type"})

// ─── Menus ──────────────────────────────────────────────────────────────────

// MenusGenerated tracks successful menu generations.
var MenusGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "menus_generated_total",
	Help:      "Total menus generated via the chef service.",
})

// ChefRequestLatency tracks chef upstream request duration in seconds.
var ChefRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "tcf",
	Name:      "chef_request_seconds",
	Help:      "Chef service request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"endpoint"})

// ChefRequestErrors tracks chef upstream failures by endpoint.
var ChefRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tcf",
	Name:      "chef_request_errors_total",
	Help:      "Total failed chef service requests.",
}, []string{"endpoint"})
