package domain

import (
	"encoding/json"
	"time"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

// User is an account record. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds a user's cooking preferences collected during onboarding.
type Profile struct {
	UserID        string    `json:"user_id"`
	BudgetEURWeek int       `json:"budget_eur_week"`
	Diners        int       `json:"diners"`
	MealsPerDay   int       `json:"meals_per_day"`
	Days          int       `json:"days"`
	DietType      string    `json:"diet_type"`
	Allergies     []string  `json:"allergies"`
	FavoriteFoods []string  `json:"favorite_foods"`
	DislikedFoods []string  `json:"disliked_foods"`
	PantryItems   string    `json:"pantry_items"`
	Onboarded     bool      `json:"onboarded"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultProfile returns the profile created at registration, before the
// onboarding survey has run.
func DefaultProfile(userID string) Profile {
	return Profile{
		UserID:        userID,
		BudgetEURWeek: 50,
		Diners:        2,
		MealsPerDay:   2,
		Days:          5,
		DietType:      "omnivora",
		Allergies:     []string{},
		FavoriteFoods: []string{},
		DislikedFoods: []string{},
	}
}

// ─── Menus & Shopping Lists ─────────────────────────────────────────────────

// Menu is a generated weekly meal plan. MenuData is the chef service's
// response, stored verbatim.
type Menu struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	MenuData  json.RawMessage `json:"menu_data"`
	CreatedAt time.Time       `json:"created_at"`
}

// ShoppingList is the ingredient list derived from a menu.
type ShoppingList struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Items        json.RawMessage `json:"items"`
	TotalCostEUR int             `json:"total_cost_eur,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ─── Chef Service Contracts ─────────────────────────────────────────────────
// The menu-generation algorithm is an external collaborator reached over
// HTTP. These are its wire shapes.

// ChefProfile is the profile payload the chef service expects.
type ChefProfile struct {
	BudgetEURWeek int      `json:"budget_eur_week"`
	Diners        int      `json:"diners"`
	MealsPerDay   int      `json:"meals_per_day"`
	Days          int      `json:"days"`
	Allergies     []string `json:"allergies"`
	Diet          string   `json:"diet"`
	Dislikes      []string `json:"dislikes"`
	PantryText    string   `json:"pantry_text"`
}

// ChefProfileFrom maps a stored profile onto the chef wire shape.
func ChefProfileFrom(p Profile) ChefProfile {
	return ChefProfile{
		BudgetEURWeek: p.BudgetEURWeek,
		Diners:        p.Diners,
		MealsPerDay:   p.MealsPerDay,
		Days:          p.Days,
		Allergies:     p.Allergies,
		Diet:          p.DietType,
		Dislikes:      p.DislikedFoods,
		PantryText:    p.PantryItems,
	}
}

// MenuRequest asks the chef service for a full weekly menu.
type MenuRequest struct {
	UserID  string      `json:"user_id"`
	Profile ChefProfile `json:"profile"`
	Days    int         `json:"days"`
}

// SwapRequest asks for a replacement of one meal in an existing menu.
type SwapRequest struct {
	UserID      string          `json:"user_id"`
	Profile     ChefProfile     `json:"profile"`
	Menu        json.RawMessage `json:"menu"`
	DayIndex    int             `json:"day_index"`
	MealKey     string          `json:"meal_key"`
	Constraints string          `json:"constraints,omitempty"`
}

// SubstitutionRequest asks for alternatives to a single ingredient.
type SubstitutionRequest struct {
	UserID     string      `json:"user_id"`
	Profile    ChefProfile `json:"profile"`
	Ingredient string      `json:"ingredient"`
	Reason     string      `json:"reason"`
}
