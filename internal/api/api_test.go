package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cocinafacil/tcf/internal/api"
	"github.com/cocinafacil/tcf/internal/app/gamification"
	"github.com/cocinafacil/tcf/internal/auth"
	"github.com/cocinafacil/tcf/internal/domain"
	"github.com/cocinafacil/tcf/internal/infra/sqlite"
)

// fakeChef is a canned ChefService.
type fakeChef struct {
	response json.RawMessage
	err      error
	calls    int
}

func (f *fakeChef) GenerateMenu(ctx context.Context, req domain.MenuRequest) (json.RawMessage, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeChef) SwapMeal(ctx context.Context, req domain.SwapRequest) (json.RawMessage, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeChef) Substitutions(ctx context.Context, req domain.SubstitutionRequest) (json.RawMessage, error) {
	f.calls++
	return f.response, f.err
}

type testEnv struct {
	srv  *httptest.Server
	db   *sqlite.DB
	gam  *gamification.Service
	chef *fakeChef
}

// newTestEnv spins up the full API over a temp database. Engine timers are
// disabled so notification assertions are synchronous.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gam := gamification.NewServiceWithConfig(db, gamification.Config{})
	t.Cleanup(gam.Close)

	chef := &fakeChef{response: json.RawMessage(`{"days":[]}`)}
	tokens := auth.NewJWTService("test-secret", "tcf", time.Hour)

	server := api.NewServer(db, gam, chef, tokens)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: db, gam: gam, chef: chef}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

// register creates an account and returns its bearer token and user id.
func (e *testEnv) register(t *testing.T, email string) (token, userID string) {
	t.Helper()
	resp, body := e.request(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register: status %d: %s", resp.StatusCode, body)
	}
	var parsed struct {
		User  struct{ ID string } `json:"user"`
		Token string              `json:"token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("parse register response: %v", err)
	}
	return parsed.Token, parsed.User.ID
}

// ═══════════════════════════════════════════════════════════════════════════
// Auth
// ═══════════════════════════════════════════════════════════════════════════

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")

	resp, body := env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "secret-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d: %s", resp.StatusCode, body)
	}

	resp, _ = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", resp.StatusCode)
	}
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"no email", "", "secret-password"},
		{"bad email", "not-an-email", "secret-password"},
		{"short password", "ana@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.request(t, "POST", "/api/auth/register", "", map[string]string{
				"email": tt.email, "password": tt.password,
			})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")

	resp, _ := env.request(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "ana@example.com", "password": "secret-password",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate email: status %d, want 400", resp.StatusCode)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, "GET", "/api/profile", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", resp.StatusCode)
	}

	resp, _ = env.request(t, "GET", "/api/profile", "garbage-token", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("bad token: status %d, want 403", resp.StatusCode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Profile & Onboarding
// ═══════════════════════════════════════════════════════════════════════════

func TestProfile_DefaultsAtRegistration(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "ana@example.com")

	resp, body := env.request(t, "GET", "/api/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var p domain.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.BudgetEURWeek != 50 || p.Diners != 2 || p.DietType != "omnivora" || p.Onboarded {
		t.Errorf("default profile = %+v", p)
	}
}

func TestProfile_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "ana@example.com")

	resp, body := env.request(t, "PUT", "/api/profile", token, map[string]any{
		"budget_eur_week": 80,
		"allergies":       []string{"marisco"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var p domain.Profile
	_ = json.Unmarshal(body, &p)
	if p.BudgetEURWeek != 80 {
		t.Errorf("budget = %d, want 80", p.BudgetEURWeek)
	}
	if p.Diners != 2 {
		t.Errorf("diners = %d, untouched field changed", p.Diners)
	}
	if len(p.Allergies) != 1 || p.Allergies[0] != "marisco" {
		t.Errorf("allergies = %v", p.Allergies)
	}
}

func TestOnboarding_AwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")

	resp, body := env.request(t, "POST", "/api/onboarding/complete", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if got := env.gam.Engine(uid).Points(); got != gamification.PointsOnboarding {
		t.Errorf("points = %d, want %d", got, gamification.PointsOnboarding)
	}

	// A repeat completion must not award again.
	env.request(t, "POST", "/api/onboarding/complete", token, nil)
	if got := env.gam.Engine(uid).Points(); got != gamification.PointsOnboarding {
		t.Errorf("points after repeat = %d, want %d", got, gamification.PointsOnboarding)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Menu Generation
// ═══════════════════════════════════════════════════════════════════════════

func TestGenerateMenu_SavesAndAwards(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")
	env.chef.response = json.RawMessage(`{"days":[{"lunch":"lentejas"}]}`)

	resp, body := env.request(t, "POST", "/api/menu/generate", token, map[string]int{"days": 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if env.chef.calls != 1 {
		t.Errorf("chef calls = %d", env.chef.calls)
	}

	// Menu persisted
	menu, err := env.db.LatestMenu(uid)
	if err != nil || menu == nil {
		t.Fatalf("menu not saved: %v", err)
	}

	// Points awarded
	if got := env.gam.Engine(uid).Points(); got != gamification.PointsMenuGenerated {
		t.Errorf("points = %d, want %d", got, gamification.PointsMenuGenerated)
	}
}

func TestGenerateMenu_ChefFailureLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")
	env.chef.err = errors.New("chef exploded")

	resp, _ := env.request(t, "POST", "/api/menu/generate", token, map[string]int{"days": 5})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status %d, want 502", resp.StatusCode)
	}

	if menu, _ := env.db.LatestMenu(uid); menu != nil {
		t.Error("failed generation saved a menu")
	}
	if got := env.gam.Engine(uid).Points(); got != 0 {
		t.Errorf("failed generation awarded %d points", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Gamification Endpoints
// ═══════════════════════════════════════════════════════════════════════════

func TestGamification_SummaryAndLevel(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")
	_ = env.gam.Engine(uid).AddPoints(600, "seed")

	resp, body := env.request(t, "GET", "/api/gamification/summary", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var summary gamification.Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if summary.Points != 600 || summary.Level.Number != 2 {
		t.Errorf("summary = %+v", summary)
	}

	_, body = env.request(t, "GET", "/api/gamification/level", token, nil)
	var lvl struct {
		Points   int          `json:"points"`
		Level    domain.Level `json:"level"`
		Progress int          `json:"progress"`
	}
	_ = json.Unmarshal(body, &lvl)
	if lvl.Level.Name != "Cocinero" || lvl.Progress != 10 {
		t.Errorf("level view = %+v", lvl)
	}
}

func TestGamification_DailyLoginAndStreak(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "ana@example.com")

	resp, body := env.request(t, "POST", "/api/gamification/login", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var got struct {
		Streak int `json:"streak"`
	}
	_ = json.Unmarshal(body, &got)
	if got.Streak != 1 {
		t.Errorf("streak = %d, want 1", got.Streak)
	}

	_, body = env.request(t, "GET", "/api/gamification/streak", token, nil)
	_ = json.Unmarshal(body, &got)
	if got.Streak != 1 {
		t.Errorf("streak view = %d, want 1", got.Streak)
	}
}

func TestGamification_Events(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")

	for _, event := range []string{"meal_completed", "day_completed", "healthy_substitute"} {
		resp, body := env.request(t, "POST", "/api/gamification/events", token, map[string]string{"event": event})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d: %s", event, resp.StatusCode, body)
		}
	}
	want := gamification.PointsMealCompleted + gamification.PointsDayCompleted + gamification.PointsHealthySubstitute
	if got := env.gam.Engine(uid).Points(); got != want {
		t.Errorf("points = %d, want %d", got, want)
	}

	resp, _ := env.request(t, "POST", "/api/gamification/events", token, map[string]string{"event": "made_up"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown event: status %d, want 400", resp.StatusCode)
	}
}

func TestGamification_WeekCompletedUnlocksFirstWeekBadge(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")

	resp, _ := env.request(t, "POST", "/api/gamification/events", token, map[string]string{"event": "week_completed"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	if got := env.gam.Engine(uid).Points(); got != gamification.PointsWeekCompleted {
		t.Errorf("points = %d, want %d", got, gamification.PointsWeekCompleted)
	}
	for _, b := range env.gam.Engine(uid).Badges() {
		if b.ID == gamification.BadgeFirstWeek && !b.Unlocked() {
			t.Error("first-week badge not unlocked")
		}
	}
}

func TestGamification_NotificationSlot(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")
	_ = env.gam.Engine(uid).AddPoints(10, "seed")

	_, body := env.request(t, "GET", "/api/gamification/notification", token, nil)
	var got struct {
		Notification *domain.Notification `json:"notification"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Notification == nil || got.Notification.Type != domain.NotifyPoints {
		t.Errorf("notification = %+v", got.Notification)
	}

	env.request(t, "POST", "/api/gamification/notification/clear", token, nil)

	_, body = env.request(t, "GET", "/api/gamification/notification", token, nil)
	got.Notification = nil
	_ = json.Unmarshal(body, &got)
	if got.Notification != nil {
		t.Errorf("slot not cleared: %+v", got.Notification)
	}
}

func TestGamification_BadgesAndHistory(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.register(t, "ana@example.com")
	_ = env.gam.Engine(uid).AddPoints(25, "seed")

	_, body := env.request(t, "GET", "/api/gamification/badges", token, nil)
	var badges []domain.Badge
	if err := json.Unmarshal(body, &badges); err != nil {
		t.Fatalf("parse badges: %v", err)
	}
	if len(badges) != 6 {
		t.Errorf("badges = %d, want 6", len(badges))
	}

	_, body = env.request(t, "GET", "/api/gamification/history", token, nil)
	var hist []domain.PointsEntry
	if err := json.Unmarshal(body, &hist); err != nil {
		t.Fatalf("parse history: %v", err)
	}
	if len(hist) != 1 || hist[0].Amount != 25 {
		t.Errorf("history = %+v", hist)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Health
// ═══════════════════════════════════════════════════════════════════════════

func TestHealth_WithoutChecker(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.request(t, "GET", "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d, want 200", resp.StatusCode)
	}
}
