package api

import (
	"encoding/json"
	"net/http"

	"github.com/cocinafacil/tcf/internal/app/gamification"
)

func (s *Server) handleGamificationSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gam.Engine(userID(r)).Snapshot())
}

func (s *Server) handleGamificationLevel(w http.ResponseWriter, r *http.Request) {
	eng := s.gam.Engine(userID(r))
	level := eng.CurrentLevel()
	writeJSON(w, http.StatusOK, map[string]any{
		"points":   eng.Points(),
		"level":    level,
		"progress": eng.Progress(),
	})
}

func (s *Server) handleGamificationStreak(w http.ResponseWriter, r *http.Request) {
	eng := s.gam.Engine(userID(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"streak":           eng.Streak(),
		"last_active_date": eng.LastActiveDate(),
	})
}

func (s *Server) handleGamificationBadges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gam.Engine(userID(r)).Badges())
}

func (s *Server) handleGamificationHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gam.Engine(userID(r)).History())
}

// The notification slot holds at most one entry; null means nothing pending.
func (s *Server) handleGamificationNotification(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notification": s.gam.Engine(userID(r)).Peek(),
	})
}

func (s *Server) handleClearNotification(w http.ResponseWriter, r *http.Request) {
	s.gam.Engine(userID(r)).ClearNotification()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleDailyLogin(w http.ResponseWriter, r *http.Request) {
	eng := s.gam.Engine(userID(r))
	if err := eng.CheckDailyLogin(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"streak":           eng.Streak(),
		"last_active_date": eng.LastActiveDate(),
	})
}

type gamificationEventRequest struct {
	Event string `json:"event"`
	Badge string `json:"badge"`
}

// eventAwards maps client-reported progress events to their point payouts.
var eventAwards = map[string]struct {
	points int
	reason string
}{
	"meal_completed":     {gamification.PointsMealCompleted, gamification.ReasonMealCompleted},
	"day_completed":      {gamification.PointsDayCompleted, gamification.ReasonDayCompleted},
	"week_completed":     {gamification.PointsWeekCompleted, gamification.ReasonWeekCompleted},
	"healthy_substitute": {gamification.PointsHealthySubstitute, gamification.ReasonHealthySubstitute},
}

func (s *Server) handleGamificationEvent(w http.ResponseWriter, r *http.Request) {
	var req gamificationEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	eng := s.gam.Engine(userID(r))

	switch req.Event {
	case "badge_unlocked":
		if req.Badge == "" {
			writeError(w, http.StatusBadRequest, "badge is required for badge_unlocked")
			return
		}
		if err := eng.UnlockBadge(req.Badge); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "week_completed":
		// First completed week also unlocks its badge
		award := eventAwards[req.Event]
		if err := eng.AddPoints(award.points, award.reason); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := eng.UnlockBadge(gamification.BadgeFirstWeek); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	default:
		award, ok := eventAwards[req.Event]
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown event: "+req.Event)
			return
		}
		if err := eng.AddPoints(award.points, award.reason); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, eng.Snapshot())
}
