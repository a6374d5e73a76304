package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/repairdesk")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("ADMIN_PASSWORD", "admin-pass")
	t.Setenv("SHOP_NAME", "Quick Fix Mobiles")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("Environment = %q", cfg.Environment)
	}
	if cfg.HTTP.Host != "0.0.0.0" || cfg.HTTP.Port != 8080 {
		t.Fatalf("HTTP defaults = %+v", cfg.HTTP)
	}
	if cfg.Admin.MaxAttempts != 3 || cfg.Admin.LockoutTime != 5*time.Minute || cfg.Admin.SessionTTL != 10*time.Minute {
		t.Fatalf("Admin defaults = %+v", cfg.Admin)
	}
	if cfg.Shop.CountryCode != "91" {
		t.Fatalf("CountryCode default = %q", cfg.Shop.CountryCode)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ADMIN_MAX_ATTEMPTS", "5")
	t.Setenv("ADMIN_LOCKOUT_TIME", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "production" || cfg.HTTP.Port != 9090 {
		t.Fatalf("overrides not applied: env=%q port=%d", cfg.Environment, cfg.HTTP.Port)
	}
	if cfg.Admin.MaxAttempts != 5 || cfg.Admin.LockoutTime != 15*time.Minute {
		t.Fatalf("admin overrides not applied: %+v", cfg.Admin)
	}
}

func TestLoadRequiredKeys(t *testing.T) {
	required := []string{"DB_DSN", "JWT_ACCESS_SECRET", "ADMIN_PASSWORD", "SHOP_NAME"}

	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := Load()
			if err == nil {
				t.Fatalf("Load succeeded without %s", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("error %q does not name %s", err, key)
			}
		})
	}
}
