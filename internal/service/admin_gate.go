package service

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"repairdesk-service/internal/config"
)

const deleteScope = "registry:delete"

// AdminGate guards the permanent registry delete. Verification is rate
// limited with a timed lockout; a successful verification issues a signed,
// single-use capability token instead of flipping client-side state.
type AdminGate struct {
	password    string
	secret      []byte
	maxAttempts int
	lockout     time.Duration
	sessionTTL  time.Duration

	mu          sync.Mutex
	attempts    int
	lockedUntil time.Time
	usedTokens  map[string]time.Time

	now func() time.Time
}

func NewAdminGate(cfg config.AdminConfig, secret string) *AdminGate {
	return &AdminGate{
		password:    cfg.Password,
		secret:      []byte(secret),
		maxAttempts: cfg.MaxAttempts,
		lockout:     cfg.LockoutTime,
		sessionTTL:  cfg.SessionTTL,
		usedTokens:  make(map[string]time.Time),
		now:         time.Now,
	}
}

type adminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// GateStatus is the state the registry view shows next to the delete action.
type GateStatus struct {
	LockedOut        bool `json:"locked_out"`
	RemainingMinutes int  `json:"remaining_minutes"`
	Attempts         int  `json:"attempts"`
	MaxAttempts      int  `json:"max_attempts"`
}

func (g *AdminGate) Status() GateStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	locked := g.lockedOutLocked()
	return GateStatus{
		LockedOut:        locked,
		RemainingMinutes: g.remainingMinutesLocked(),
		Attempts:         g.attempts,
		MaxAttempts:      g.maxAttempts,
	}
}

// Verify checks the admin password. During a lockout the attempt is rejected
// without being counted. On success the attempt counter resets and a delete
// capability token with a fixed TTL is returned.
func (g *AdminGate) Verify(password string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lockedOutLocked() {
		return "", fmt.Errorf("%w: try again in %d minutes", ErrLockedOut, g.remainingMinutesLocked())
	}

	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		g.attempts++
		if g.attempts >= g.maxAttempts {
			g.lockedUntil = g.now().Add(g.lockout)
			g.attempts = 0
			return "", fmt.Errorf("%w: too many failed attempts, locked for %d minutes",
				ErrLockedOut, int(g.lockout.Minutes()))
		}
		remaining := g.maxAttempts - g.attempts
		return "", fmt.Errorf("%w: incorrect password, %d attempts remaining", ErrPermissionDenied, remaining)
	}

	g.attempts = 0

	now := g.now()
	claims := adminClaims{
		Scope: deleteScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authorize validates and consumes a delete capability token. Each token
// authorizes exactly one delete; reuse is rejected even inside the TTL.
func (g *AdminGate) Authorize(tokenString string) error {
	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return g.now() }))
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: admin session expired or invalid", ErrPermissionDenied)
	}
	if claims.Scope != deleteScope {
		return fmt.Errorf("%w: token lacks delete scope", ErrPermissionDenied)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, used := g.usedTokens[claims.ID]; used {
		return fmt.Errorf("%w: admin session already consumed", ErrPermissionDenied)
	}
	g.usedTokens[claims.ID] = claims.ExpiresAt.Time
	g.pruneUsedLocked()
	return nil
}

// lockedOutLocked reports lockout state; an expired lockout clears itself and
// resets the attempt counter. Caller must hold mu.
func (g *AdminGate) lockedOutLocked() bool {
	if g.lockedUntil.IsZero() {
		return false
	}
	if g.now().Before(g.lockedUntil) {
		return true
	}
	g.lockedUntil = time.Time{}
	g.attempts = 0
	return false
}

func (g *AdminGate) remainingMinutesLocked() int {
	if g.lockedUntil.IsZero() {
		return 0
	}
	remaining := g.lockedUntil.Sub(g.now())
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Minutes()) + 1
}

func (g *AdminGate) pruneUsedLocked() {
	now := g.now()
	for id, expiry := range g.usedTokens {
		if expiry.Before(now) {
			delete(g.usedTokens, id)
		}
	}
}
