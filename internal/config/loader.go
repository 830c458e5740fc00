package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking
// service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	LogLevel      string
	SessionSecret string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration

	// SeedRooms are room names created at startup when absent.
	SeedRooms []string

	// RateLimit bounds request throughput per client; RateBurst is the
	// short-term allowance above the sustained rate.
	RateLimit float64
	RateBurst int

	// Bootstrap manager account, created only when no manager exists.
	BootstrapManagerName     string
	BootstrapManagerEmail    string
	BootstrapManagerPhone    string
	BootstrapManagerPassword string
}

// DefaultSeedRooms are the rooms provisioned on a fresh database.
var DefaultSeedRooms = []string{
	"ROOM 1", "ROOM 2", "ROOM 3", "ROOM 4", "ROOM 5", "ROOM 6",
	"ROOM 3/HALL", "BOARDROOM",
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults. ROOMBOOK_SESSION_SECRET is
// required; missing or unparsable values are reported together so an operator
// can fix them in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "roombook.db",
		LogLevel:      "info",
		SessionTTL:    12 * time.Hour,
		ResetTokenTTL: 45 * time.Minute,
		SeedRooms:     DefaultSeedRooms,
		RateLimit:     20,
		RateBurst:     40,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if level := strings.TrimSpace(os.Getenv("ROOMBOOK_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if secret := strings.TrimSpace(os.Getenv("ROOMBOOK_SESSION_SECRET")); secret == "" {
		missing = append(missing, "ROOMBOOK_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("ROOMBOOK_RESET_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOOK_RESET_TOKEN_TTL")
		} else {
			cfg.ResetTokenTTL = ttl
		}
	}

	if roomsValue := strings.TrimSpace(os.Getenv("ROOMBOOK_SEED_ROOMS")); roomsValue != "" {
		cfg.SeedRooms = splitRoomNames(roomsValue)
	}

	if rateValue := strings.TrimSpace(os.Getenv("ROOMBOOK_RATE_LIMIT")); rateValue != "" {
		rate, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || rate <= 0 {
			invalid = append(invalid, "ROOMBOOK_RATE_LIMIT")
		} else {
			cfg.RateLimit = rate
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("ROOMBOOK_RATE_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "ROOMBOOK_RATE_BURST")
		} else {
			cfg.RateBurst = burst
		}
	}

	cfg.BootstrapManagerName = strings.TrimSpace(os.Getenv("ROOMBOOK_MANAGER_NAME"))
	cfg.BootstrapManagerEmail = strings.TrimSpace(os.Getenv("ROOMBOOK_MANAGER_EMAIL"))
	cfg.BootstrapManagerPhone = strings.TrimSpace(os.Getenv("ROOMBOOK_MANAGER_PHONE"))
	cfg.BootstrapManagerPassword = os.Getenv("ROOMBOOK_MANAGER_PASSWORD")

	if cfg.BootstrapManagerEmail != "" && cfg.BootstrapManagerPassword == "" {
		missing = append(missing, "ROOMBOOK_MANAGER_PASSWORD")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitRoomNames(value string) []string {
	parts := strings.Split(value, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
