package service

import (
	"errors"
	"testing"
	"time"

	"repairdesk-service/internal/config"
)

func newTestGate(clock *time.Time) *AdminGate {
	gate := NewAdminGate(config.AdminConfig{
		Password:    "correct-horse",
		MaxAttempts: 3,
		LockoutTime: 5 * time.Minute,
		SessionTTL:  10 * time.Minute,
	}, "test-secret")
	gate.now = func() time.Time { return *clock }
	return gate
}

func TestAdminGateLockoutCycle(t *testing.T) {
	clock := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	gate := newTestGate(&clock)

	// Two wrong attempts count but do not lock.
	for i := 0; i < 2; i++ {
		if _, err := gate.Verify("wrong"); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("attempt %d: got %v, want ErrPermissionDenied", i+1, err)
		}
	}

	// Third wrong attempt triggers the lockout.
	if _, err := gate.Verify("wrong"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("third attempt: got %v, want ErrLockedOut", err)
	}

	// Even the correct password is rejected while locked, without counting.
	if _, err := gate.Verify("correct-horse"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("during lockout: got %v, want ErrLockedOut", err)
	}

	status := gate.Status()
	if !status.LockedOut || status.RemainingMinutes == 0 {
		t.Fatalf("status during lockout: %+v", status)
	}

	// The lockout expires and the counter is back at zero.
	clock = clock.Add(5*time.Minute + time.Second)
	if status := gate.Status(); status.LockedOut || status.Attempts != 0 {
		t.Fatalf("status after lockout: %+v", status)
	}
	if _, err := gate.Verify("correct-horse"); err != nil {
		t.Fatalf("after lockout: %v", err)
	}
}

func TestAdminGateSuccessResetsAttempts(t *testing.T) {
	clock := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	gate := newTestGate(&clock)

	if _, err := gate.Verify("wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := gate.Verify("correct-horse"); err != nil {
		t.Fatalf("correct password: %v", err)
	}

	// Two more wrong attempts must not lock: the counter was reset.
	for i := 0; i < 2; i++ {
		if _, err := gate.Verify("wrong"); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("attempt %d after reset: got %v", i+1, err)
		}
	}
}

func TestAdminGateTokenSingleUse(t *testing.T) {
	clock := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	gate := newTestGate(&clock)

	token, err := gate.Verify("correct-horse")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if err := gate.Authorize(token); err != nil {
		t.Fatalf("first Authorize: %v", err)
	}
	if err := gate.Authorize(token); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("second Authorize: got %v, want ErrPermissionDenied", err)
	}
}

func TestAdminGateTokenExpiry(t *testing.T) {
	clock := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	gate := newTestGate(&clock)

	token, err := gate.Verify("correct-horse")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	clock = clock.Add(10*time.Minute + time.Second)
	if err := gate.Authorize(token); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expired token: got %v, want ErrPermissionDenied", err)
	}
}

func TestAdminGateRejectsForeignToken(t *testing.T) {
	clock := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	gate := newTestGate(&clock)

	if err := gate.Authorize("not-a-jwt"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("garbage token: got %v, want ErrPermissionDenied", err)
	}

	other := NewAdminGate(config.AdminConfig{
		Password:    "correct-horse",
		MaxAttempts: 3,
		LockoutTime: 5 * time.Minute,
		SessionTTL:  10 * time.Minute,
	}, "different-secret")
	other.now = func() time.Time { return clock }

	token, err := other.Verify("correct-horse")
	if err != nil {
		t.Fatalf("Verify on other gate: %v", err)
	}
	if err := gate.Authorize(token); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("token from wrong secret: got %v, want ErrPermissionDenied", err)
	}
}
