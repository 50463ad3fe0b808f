package sqlite_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sqlite.DB, id, email string) {
	t.Helper()
	err := db.CreateUser(domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefak",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Users
// ═══════════════════════════════════════════════════════════════════════════

func TestUsers_CreateAndGet(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "ana@example.com")

	u, err := db.GetUser("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("email = %q", u.Email)
	}

	byEmail, err := db.GetUserByEmail("ana@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "u1" {
		t.Errorf("id = %q", byEmail.ID)
	}
}

func TestUsers_MissingReturnsNil(t *testing.T) {
	db := testDB(t)

	u, err := db.GetUser("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for missing user, got %+v", u)
	}
}

func TestUsers_DuplicateEmailRejected(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "ana@example.com")

	err := db.CreateUser(domain.User{ID: "u2", Email: "ana@example.com", PasswordHash: "x", CreatedAt: time.Now()})
	if err == nil {
		t.Error("duplicate email accepted")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Profiles
// ═══════════════════════════════════════════════════════════════════════════

func TestProfiles_RoundTrip(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "ana@example.com")

	p := domain.DefaultProfile("u1")
	p.Allergies = []string{"gluten", "lactosa"}
	p.FavoriteFoods = []string{"paella"}
	if err := db.CreateProfile(p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetProfile("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("profile missing")
	}
	if got.BudgetEURWeek != 50 || got.Diners != 2 || got.DietType != "omnivora" {
		t.Errorf("profile = %+v", got)
	}
	if len(got.Allergies) != 2 || got.Allergies[0] != "gluten" {
		t.Errorf("allergies = %v", got.Allergies)
	}
	if got.Onboarded {
		t.Error("fresh profile marked onboarded")
	}
}

func TestProfiles_Update(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "ana@example.com")
	if err := db.CreateProfile(domain.DefaultProfile("u1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	p, _ := db.GetProfile("u1")
	p.BudgetEURWeek = 80
	p.Days = 7
	p.Onboarded = true

	updated, err := db.UpdateProfile(*p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BudgetEURWeek != 80 || updated.Days != 7 || !updated.Onboarded {
		t.Errorf("updated = %+v", updated)
	}

	again, _ := db.GetProfile("u1")
	if again.BudgetEURWeek != 80 || !again.Onboarded {
		t.Errorf("update not persisted: %+v", again)
	}
}

func TestProfiles_MissingReturnsNil(t *testing.T) {
	db := testDB(t)
	p, err := db.GetProfile("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Menus
// ═══════════════════════════════════════════════════════════════════════════

func TestMenus_LatestAndHistory(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "ana@example.com")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.CreateMenu(domain.Menu{
			ID:        "m" + string(rune('1'+i)),
			UserID:    "u1",
			MenuData:  json.RawMessage(`{"week":` + string(rune('1'+i)) + `}`),
			CreatedAt: base.AddDate(0, 0, i),
		})
		if err != nil {
			t.Fatalf("create menu %d: %v", i, err)
		}
	}

	latest, err := db.LatestMenu("u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ID != "m3" {
		t.Errorf("latest = %+v, want m3", latest)
	}

	hist, err := db.MenuHistory("u1", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history len = %d, want 2", len(hist))
	}
	if hist[0].ID != "m3" || hist[1].ID != "m2" {
		t.Errorf("history order = %s, %s (want newest first)", hist[0].ID, hist[1].ID)
	}
}

func TestMenus_LatestMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	m, err := db.LatestMenu("nobody")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil, got %+v", m)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Shopping Lists
// ═══════════════════════════════════════════════════════════════════════════

func TestShoppingLists_RoundTrip(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", "ana@example.com")

	err := db.CreateShoppingList(domain.ShoppingList{
		ID:           "s1",
		UserID:       "u1",
		Items:        json.RawMessage(`[{"name":"tomates","qty":"1kg"}]`),
		TotalCostEUR: 42,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.LatestShoppingList("u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.ID != "s1" || got.TotalCostEUR != 42 {
		t.Errorf("list = %+v", got)
	}
	if string(got.Items) == "" {
		t.Error("items payload lost")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Gamification State
// ═══════════════════════════════════════════════════════════════════════════

func TestGamificationState_MissingReturnsNilNil(t *testing.T) {
	db := testDB(t)

	s, err := db.LoadState("fresh-user")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s != nil {
		t.Errorf("expected (nil, nil) for absent state, got %+v", s)
	}
}

func TestGamificationState_SaveOverwrites(t *testing.T) {
	db := testDB(t)

	state := domain.GamificationState{Points: 100, Level: 1, Streak: 3, LastActiveDate: "2026-03-10"}
	if err := db.SaveState("u1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	state.Points = 250
	state.Level = 1
	if err := db.SaveState("u1", state); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := db.LoadState("u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Points != 250 || got.Streak != 3 || got.LastActiveDate != "2026-03-10" {
		t.Errorf("state = %+v", got)
	}
}
