package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost              string
	HTTPPort              string
	MySQLDSN              string
	LogLevel              string
	LogFormat             string
	KeyPrefix             string
	DefaultExpirationDays int
	Webhook               WebhookConfig
	Feishu                FeishuConfig
}

// WebhookConfig drives the signed-webhook authentication on the key
// provisioning endpoint. When Enabled is false the endpoint is closed
// regardless of any other setting.
type WebhookConfig struct {
	Enabled            bool
	Secret             string
	AllowedIPs         []string
	TimestampTolerance time.Duration
}

type FeishuConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	webhook, err := loadWebhookConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPHost:              getEnv("HTTP_HOST", ""),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		MySQLDSN:              mysqlDSN,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		KeyPrefix:             getEnv("KEY_PREFIX", "rk_"),
		DefaultExpirationDays: getIntEnv("DEFAULT_EXPIRATION_DAYS", 30),
		Webhook:               webhook,
		Feishu: FeishuConfig{
			WebhookURL: getEnv("FEISHU_WEBHOOK_URL", ""),
			Timeout:    time.Duration(getIntEnv("FEISHU_TIMEOUT_SECONDS", 10)) * time.Second,
		},
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQLDSN
}

func loadWebhookConfig() (WebhookConfig, error) {
	enabled := getBoolEnv("WEBHOOK_ENABLED", false)

	secret := os.Getenv("WEBHOOK_SECRET")
	if enabled && secret == "" {
		return WebhookConfig{}, errors.New("WEBHOOK_SECRET environment variable is required when WEBHOOK_ENABLED is true")
	}

	allowedIPs, err := parseAllowedIPs(os.Getenv("WEBHOOK_ALLOWED_IPS"))
	if err != nil {
		return WebhookConfig{}, err
	}

	return WebhookConfig{
		Enabled:            enabled,
		Secret:             secret,
		AllowedIPs:         allowedIPs,
		TimestampTolerance: getDurationEnv("WEBHOOK_TIMESTAMP_TOLERANCE", 5*time.Minute),
	}, nil
}

// parseAllowedIPs splits a comma-separated address list. An empty list
// means no source restriction.
func parseAllowedIPs(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	ips := make([]string, 0, len(parts))
	for _, part := range parts {
		ip := strings.TrimSpace(part)
		if ip == "" {
			continue
		}
		if net.ParseIP(ip) == nil {
			return nil, fmt.Errorf("WEBHOOK_ALLOWED_IPS contains invalid address %q", ip)
		}
		ips = append(ips, ip)
	}
	return ips, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
