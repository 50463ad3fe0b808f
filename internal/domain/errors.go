package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Gamification errors
	ErrInvalidPointAmount = errors.New("point amount must be positive")
	ErrEngineClosed       = errors.New("gamification engine is closed")

	// Account errors
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")

	// Chef service errors
	ErrChefUnavailable = errors.New("menu-generation service unreachable")
	ErrChefRejected    = errors.New("menu-generation service rejected the request")
)
