package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cocinafacil/tcf/internal/domain"
)

// DB implements domain.MealStore: accounts, profiles, menus, and shopping
// lists.

// ─── Users ──────────────────────────────────────────────────────────────────

// CreateUser inserts a user record.
func (d *DB) CreateUser(u domain.User) error {
	_, err := d.db.Exec(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (d *DB) GetUser(id string) (*domain.User, error) {
	row := d.db.QueryRow(
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id,
	)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (d *DB) GetUserByEmail(email string) (*domain.User, error) {
	row := d.db.QueryRow(
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	)
	return scanUser(row)
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var createdAt int64
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

// ─── Profiles ───────────────────────────────────────────────────────────────

// CreateProfile inserts a profile row for a user.
func (d *DB) CreateProfile(p domain.Profile) error {
	allergies, favorites, dislikes, err := encodeLists(p)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		`INSERT INTO profiles (user_id, budget_eur_week, diners, meals_per_day, days,
			diet_type, allergies, favorite_foods, disliked_foods, pantry_items, onboarded, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.BudgetEURWeek, p.Diners, p.MealsPerDay, p.Days,
		p.DietType, allergies, favorites, dislikes, p.PantryItems, p.Onboarded, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a user's profile.
func (d *DB) GetProfile(userID string) (*domain.Profile, error) {
	row := d.db.QueryRow(
		`SELECT user_id, budget_eur_week, diners, meals_per_day, days,
			diet_type, allergies, favorite_foods, disliked_foods, pantry_items, onboarded, updated_at
		 FROM profiles WHERE user_id = ?`, userID,
	)
	return scanProfile(row)
}

// UpdateProfile replaces a user's profile fields. Returns the stored row,
// or (nil, nil) if the user has no profile.
func (d *DB) UpdateProfile(p domain.Profile) (*domain.Profile, error) {
	allergies, favorites, dislikes, err := encodeLists(p)
	if err != nil {
		return nil, err
	}
	result, err := d.db.Exec(
		`UPDATE profiles SET budget_eur_week=?, diners=?, meals_per_day=?, days=?,
			diet_type=?, allergies=?, favorite_foods=?, disliked_foods=?, pantry_items=?, onboarded=?, updated_at=?
		 WHERE user_id=?`,
		p.BudgetEURWeek, p.Diners, p.MealsPerDay, p.Days,
		p.DietType, allergies, favorites, dislikes, p.PantryItems, p.Onboarded, time.Now().Unix(),
		p.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return d.GetProfile(p.UserID)
}

func encodeLists(p domain.Profile) (string, string, string, error) {
	allergies, err := json.Marshal(emptyIfNil(p.Allergies))
	if err != nil {
		return "", "", "", fmt.Errorf("encode allergies: %w", err)
	}
	favorites, err := json.Marshal(emptyIfNil(p.FavoriteFoods))
	if err != nil {
		return "", "", "", fmt.Errorf("encode favorites: %w", err)
	}
	dislikes, err := json.Marshal(emptyIfNil(p.DislikedFoods))
	if err != nil {
		return "", "", "", fmt.Errorf("encode dislikes: %w", err)
	}
	return string(allergies), string(favorites), string(dislikes), nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanProfile(s scanner) (*domain.Profile, error) {
	var p domain.Profile
	var allergies, favorites, dislikes string
	var updatedAt int64
	err := s.Scan(&p.UserID, &p.BudgetEURWeek, &p.Diners, &p.MealsPerDay, &p.Days,
		&p.DietType, &allergies, &favorites, &dislikes, &p.PantryItems, &p.Onboarded, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(allergies), &p.Allergies); err != nil {
		return nil, fmt.Errorf("decode allergies: %w", err)
	}
	if err := json.Unmarshal([]byte(favorites), &p.FavoriteFoods); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if err := json.Unmarshal([]byte(dislikes), &p.DislikedFoods); err != nil {
		return nil, fmt.Errorf("decode dislikes: %w", err)
	}
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

// ─── Menus ──────────────────────────────────────────────────────────────────

// CreateMenu stores a generated menu.
func (d *DB) CreateMenu(m domain.Menu) error {
	_, err := d.db.Exec(
		`INSERT INTO menus (id, user_id, menu_data, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.UserID, string(m.MenuData), m.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// LatestMenu returns the user's most recent menu, or (nil, nil).
func (d *DB) LatestMenu(userID string) (*domain.Menu, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, menu_data, created_at FROM menus
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID,
	)
	return scanMenu(row)
}

// MenuHistory returns the user's menus, newest first.
func (d *DB) MenuHistory(userID string, limit int) ([]domain.Menu, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.Query(
		`SELECT id, user_id, menu_data, created_at FROM menus
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []domain.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

func scanMenu(s scanner) (*domain.Menu, error) {
	var m domain.Menu
	var data string
	var createdAt int64
	err := s.Scan(&m.ID, &m.UserID, &data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.MenuData = json.RawMessage(data)
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

// ─── Shopping Lists ─────────────────────────────────────────────────────────

// CreateShoppingList stores a shopping list.
func (d *DB) CreateShoppingList(l domain.ShoppingList) error {
	var cost sql.NullInt64
	if l.TotalCostEUR > 0 {
		cost = sql.NullInt64{Int64: int64(l.TotalCostEUR), Valid: true}
	}
	_, err := d.db.Exec(
		`INSERT INTO shopping_lists (id, user_id, items, total_cost_eur, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.UserID, string(l.Items), cost, l.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create shopping list: %w", err)
	}
	return nil
}

// LatestShoppingList returns the user's most recent list, or (nil, nil).
func (d *DB) LatestShoppingList(userID string) (*domain.ShoppingList, error) {
	var l domain.ShoppingList
	var items string
	var cost sql.NullInt64
	var createdAt int64
	err := d.db.QueryRow(
		`SELECT id, user_id, items, total_cost_eur, created_at FROM shopping_lists
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&l.ID, &l.UserID, &items, &cost, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Items = json.RawMessage(items)
	if cost.Valid {
		l.TotalCostEUR = int(cost.Int64)
	}
	l.CreatedAt = time.Unix(createdAt, 0)
	return &l, nil
}
