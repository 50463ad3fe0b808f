// Package api provides the REST API for the meal-planning service:
// accounts, profiles, menu generation, shopping lists, and gamification.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cocinafacil/tcf/internal/app/gamification"
	"github.com/cocinafacil/tcf/internal/auth"
	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/health"
)

// Server is the HTTP API server.
type Server struct {
	store          domain.MealStore
	gam            *gamification.Service
	chef           domain.ChefService
	tokens         *auth.JWTService
	checker        *health.Checker
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(store domain.MealStore, gam *gamification.Service, chefSvc domain.ChefService, tokens *auth.JWTService) *Server {
	return &Server{store: store, gam: gam, chef: chefSvc, tokens: tokens}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker attaches the periodic checker backing /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Everything below requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/onboarding/complete", s.handleOnboardingComplete)

			r.Post("/menu/generate", s.handleGenerateMenu)
			r.Post("/menu/swap", s.handleSwapMeal)
			r.Post("/substitutions", s.handleSubstitutions)

			r.Post("/menus", s.handleSaveMenu)
			r.Get("/menus/latest", s.handleLatestMenu)
			r.Get("/menus/history", s.handleMenuHistory)

			r.Post("/shopping", s.handleSaveShoppingList)
			r.Get("/shopping/latest", s.handleLatestShoppingList)

			r.Route("/gamification", func(r chi.Router) {
				r.Get("/summary", s.handleGamificationSummary)
				r.Get("/level", s.handleGamificationLevel)
				r.Get("/streak", s.handleGamificationStreak)
				r.Get("/badges", s.handleGamificationBadges)
				r.Get("/history", s.handleGamificationHistory)
				r.Get("/notification", s.handleGamificationNotification)
				r.Post("/notification/clear", s.handleClearNotification)
				r.Post("/login", s.handleDailyLogin)
				r.Post("/events", s.handleGamificationEvent)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := http.StatusOK
	if !s.checker.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy": s.checker.IsHealthy(),
		"checks":  s.checker.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
