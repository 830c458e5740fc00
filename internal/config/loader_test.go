package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"ROOMBOOK_HTTP_PORT",
			"ROOMBOOK_SQLITE_DSN",
			"ROOMBOOK_LOG_LEVEL",
			"ROOMBOOK_SESSION_TTL",
			"ROOMBOOK_RESET_TOKEN_TTL",
			"ROOMBOOK_SEED_ROOMS",
			"ROOMBOOK_RATE_LIMIT",
			"ROOMBOOK_RATE_BURST",
			"ROOMBOOK_MANAGER_EMAIL",
			"ROOMBOOK_MANAGER_PASSWORD",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("ROOMBOOK_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "roombook.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected default session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.ResetTokenTTL != 45*time.Minute {
			t.Fatalf("expected default reset token TTL 45m, got %s", cfg.ResetTokenTTL)
		}
		if !reflect.DeepEqual(cfg.SeedRooms, DefaultSeedRooms) {
			t.Fatalf("unexpected default seed rooms: %v", cfg.SeedRooms)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"ROOMBOOK_SESSION_SECRET",
			"ROOMBOOK_HTTP_PORT",
			"ROOMBOOK_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: ROOMBOOK_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("ROOMBOOK_SESSION_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_HTTP_PORT", "9090")
		t.Setenv("ROOMBOOK_SQLITE_DSN", "/tmp/roombook.db")
		t.Setenv("ROOMBOOK_SESSION_TTL", "24h")
		t.Setenv("ROOMBOOK_RESET_TOKEN_TTL", "30m")
		t.Setenv("ROOMBOOK_RATE_LIMIT", "5.5")
		t.Setenv("ROOMBOOK_RATE_BURST", "10")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.ResetTokenTTL != 30*time.Minute {
			t.Fatalf("expected reset token TTL 30m, got %s", cfg.ResetTokenTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "/tmp/roombook.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.RateLimit != 5.5 || cfg.RateBurst != 10 {
			t.Fatalf("unexpected rate settings: %v burst %d", cfg.RateLimit, cfg.RateBurst)
		}
	})

	t.Run("rejects malformed numeric values", func(t *testing.T) {
		t.Setenv("ROOMBOOK_SESSION_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_HTTP_PORT", "not-a-port")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed HTTP port")
		}
		expected := "invalid environment variable values: ROOMBOOK_HTTP_PORT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("splits seed room names", func(t *testing.T) {
		t.Setenv("ROOMBOOK_SESSION_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_SEED_ROOMS", "ROOM A, ROOM B ,,BOARDROOM")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		want := []string{"ROOM A", "ROOM B", "BOARDROOM"}
		if !reflect.DeepEqual(cfg.SeedRooms, want) {
			t.Fatalf("expected %v, got %v", want, cfg.SeedRooms)
		}
	})

	t.Run("requires manager password alongside email", func(t *testing.T) {
		t.Setenv("ROOMBOOK_SESSION_SECRET", "secret-value")
		t.Setenv("ROOMBOOK_MANAGER_EMAIL", "manager@example.com")
		if err := os.Unsetenv("ROOMBOOK_MANAGER_PASSWORD"); err != nil {
			t.Fatalf("failed to unset ROOMBOOK_MANAGER_PASSWORD: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when manager password is missing")
		}
	})
}
