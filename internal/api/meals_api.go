package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cocinafacil/tcf/internal/app/gamification"
	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/infra/metrics"
)

// --- /api/profile ---

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type profileUpdateRequest struct {
	BudgetEURWeek *int      `json:"budget_eur_week"`
	Diners        *int      `json:"diners"`
	MealsPerDay   *int      `json:"meals_per_day"`
	Days          *int      `json:"days"`
	DietType      *string   `json:"diet_type"`
	Allergies     *[]string `json:"allergies"`
	FavoriteFoods *[]string `json:"favorite_foods"`
	DislikedFoods *[]string `json:"disliked_foods"`
	PantryItems   *string   `json:"pantry_items"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile, err := s.store.GetProfile(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
		return
	}

	// Partial update: only supplied fields change
	if req.BudgetEURWeek != nil {
		profile.BudgetEURWeek = *req.BudgetEURWeek
	}
	if req.Diners != nil {
		profile.Diners = *req.Diners
	}
	if req.MealsPerDay != nil {
		profile.MealsPerDay = *req.MealsPerDay
	}
	if req.Days != nil {
		profile.Days = *req.Days
	}
	if req.DietType != nil {
		profile.DietType = *req.DietType
	}
	if req.Allergies != nil {
		profile.Allergies = *req.Allergies
	}
	if req.FavoriteFoods != nil {
		profile.FavoriteFoods = *req.FavoriteFoods
	}
	if req.DislikedFoods != nil {
		profile.DislikedFoods = *req.DislikedFoods
	}
	if req.PantryItems != nil {
		profile.PantryItems = *req.PantryItems
	}

	updated, err := s.store.UpdateProfile(*profile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- /api/onboarding/complete ---

// Completing the onboarding survey awards points exactly once: the profile
// carries an onboarded flag and only the false→true transition pays out.
func (s *Server) handleOnboardingComplete(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	profile, err := s.store.GetProfile(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
		return
	}

	awarded := false
	if !profile.Onboarded {
		profile.Onboarded = true
		if _, err := s.store.UpdateProfile(*profile); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := s.gam.Engine(uid).AddPoints(gamification.PointsOnboarding, gamification.ReasonOnboarding); err != nil {
			log.Printf("[api] onboarding award for %s: %v", uid, err)
		} else {
			awarded = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"onboarded":      true,
		"points_awarded": awarded,
	})
}

// --- /api/menu/generate ---

type generateMenuRequest struct {
	Days int `json:"days"`
}

func (s *Server) handleGenerateMenu(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	var req generateMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile, err := s.store.GetProfile(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
		return
	}
	days := req.Days
	if days <= 0 {
		days = profile.Days
	}

	menuData, err := s.chef.GenerateMenu(r.Context(), domain.MenuRequest{
		UserID:  uid,
		Profile: domain.ChefProfileFrom(*profile),
		Days:    days,
	})
	if err != nil {
		// Chef failures never touch gamification state
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	menu := domain.Menu{
		ID:        uuid.NewString(),
		UserID:    uid,
		MenuData:  menuData,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMenu(menu); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.MenusGenerated.Inc()
	if err := s.gam.Engine(uid).AddPoints(gamification.PointsMenuGenerated, gamification.ReasonMenuGenerated); err != nil {
		log.Printf("[api] menu award for %s: %v", uid, err)
	}

	writeJSON(w, http.StatusOK, menu)
}

// --- /api/menu/swap ---

type swapMealRequest struct {
	Menu        json.RawMessage `json:"menu"`
	DayIndex    int             `json:"day_index"`
	MealKey     string          `json:"meal_key"`
	Constraints string          `json:"constraints"`
}

func (s *Server) handleSwapMeal(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	var req swapMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.MealKey == "" {
		writeError(w, http.StatusBadRequest, "meal_key is required")
		return
	}

	profile, err := s.store.GetProfile(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
		return
	}

	result, err := s.chef.SwapMeal(r.Context(), domain.SwapRequest{
		UserID:      uid,
		Profile:     domain.ChefProfileFrom(*profile),
		Menu:        req.Menu,
		DayIndex:    req.DayIndex,
		MealKey:     req.MealKey,
		Constraints: req.Constraints,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- /api/substitutions ---

type substitutionsRequest struct {
	Ingredient string `json:"ingredient"`
	Reason     string `json:"reason"`
}

func (s *Server) handleSubstitutions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	var req substitutionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Ingredient == "" {
		writeError(w, http.StatusBadRequest, "ingredient is required")
		return
	}

	profile, err := s.store.GetProfile(uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound.Error())
		return
	}

	result, err := s.chef.Substitutions(r.Context(), domain.SubstitutionRequest{
		UserID:     uid,
		Profile:    domain.ChefProfileFrom(*profile),
		Ingredient: req.Ingredient,
		Reason:     req.Reason,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- /api/menus ---

func (s *Server) handleSaveMenu(w http.ResponseWriter, r *http.Request) {
	var menuData json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&menuData); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	menu := domain.Menu{
		ID:        uuid.NewString(),
		UserID:    userID(r),
		MenuData:  menuData,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateMenu(menu); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (s *Server) handleLatestMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := s.store.LatestMenu(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if menu == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, menu.MenuData)
}

func (s *Server) handleMenuHistory(w http.ResponseWriter, r *http.Request) {
	menus, err := s.store.MenuHistory(userID(r), 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if menus == nil {
		menus = []domain.Menu{}
	}
	writeJSON(w, http.StatusOK, menus)
}

// --- /api/shopping ---

type saveShoppingRequest struct {
	Items        json.RawMessage `json:"items"`
	TotalCostEUR int             `json:"total_cost_eur"`
}

func (s *Server) handleSaveShoppingList(w http.ResponseWriter, r *http.Request) {
	var req saveShoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	list := domain.ShoppingList{
		ID:           uuid.NewString(),
		UserID:       userID(r),
		Items:        req.Items,
		TotalCostEUR: req.TotalCostEUR,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateShoppingList(list); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleLatestShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.LatestShoppingList(userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, list.Items)
}
