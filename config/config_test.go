package config

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	if got := getEnv("MISSING_STRING", "default"); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}

	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}
	if got := getDurationEnv("MISSING_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected 5m, got %v", got)
	}

	t.Setenv("TEST_BOOL", "true")
	if got := getBoolEnv("TEST_BOOL", false); !got {
		t.Fatalf("expected true")
	}
	if got := getBoolEnv("MISSING_BOOL", true); !got {
		t.Fatalf("expected default true")
	}

	t.Setenv("TEST_INT", "42")
	if got := getIntEnv("TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := getIntEnv("MISSING_INT", 7); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestParseAllowedIPs(t *testing.T) {
	ips, err := parseAllowedIPs("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ips) != 0 {
		t.Fatalf("expected empty list, got %v", ips)
	}

	ips, err = parseAllowedIPs(" 10.0.0.1, 192.168.1.5 ,::1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ips) != 3 || ips[0] != "10.0.0.1" || ips[1] != "192.168.1.5" || ips[2] != "::1" {
		t.Fatalf("unexpected list: %v", ips)
	}

	if _, err = parseAllowedIPs("10.0.0.1,not-an-ip"); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when MYSQL_DSN is missing")
	}
}

func TestLoadRequiresWebhookSecretWhenEnabled(t *testing.T) {
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/keys")
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WEBHOOK_SECRET is missing")
	}

	t.Setenv("WEBHOOK_SECRET", "shared-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Webhook.Enabled {
		t.Fatalf("expected webhook enabled")
	}
	if cfg.Webhook.TimestampTolerance != 5*time.Minute {
		t.Fatalf("expected default tolerance 5m, got %v", cfg.Webhook.TimestampTolerance)
	}
	if cfg.KeyPrefix != "rk_" {
		t.Fatalf("expected default key prefix rk_, got %q", cfg.KeyPrefix)
	}
	if cfg.DefaultExpirationDays != 30 {
		t.Fatalf("expected default expiration 30 days, got %d", cfg.DefaultExpirationDays)
	}
}
