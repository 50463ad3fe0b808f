package domain

import (
	"context"
	"encoding/json"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StateStore abstracts durable storage for gamification state.
// The whole GamificationState is the unit of durability: loaded once at
// engine start, saved after every mutating operation.
type StateStore interface {
	// LoadState returns the stored state, or (nil, nil) if none exists yet.
	LoadState(userID string) (*GamificationState, error)

	// SaveState replaces the stored state for the user.
	SaveState(userID string, state GamificationState) error
}

// MealStore abstracts persistent storage for accounts, profiles, menus,
// and shopping lists.
type MealStore interface {
	CreateUser(user User) error
	GetUser(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)

	CreateProfile(profile Profile) error
	GetProfile(userID string) (*Profile, error)
	UpdateProfile(profile Profile) (*Profile, error)

	CreateMenu(menu Menu) error
	LatestMenu(userID string) (*Menu, error)
	MenuHistory(userID string, limit int) ([]Menu, error)

	CreateShoppingList(list ShoppingList) error
	LatestShoppingList(userID string) (*ShoppingList, error)
}

// ChefService abstracts the external AI menu-generation service.
// Responses are opaque JSON documents stored and served verbatim.
type ChefService interface {
	GenerateMenu(ctx context.Context, req MenuRequest) (json.RawMessage, error)
	SwapMeal(ctx context.Context, req SwapRequest) (json.RawMessage, error)
	Substitutions(ctx context.Context, req SubstitutionRequest) (json.RawMessage, error)
}
