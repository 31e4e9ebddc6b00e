package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	dto "github.com/vibast-solutions/ms-go-relay-keys/app/dto/http"
	"github.com/vibast-solutions/ms-go-relay-keys/config"
)

// IPGateMiddleware enforces the webhook feature flag and an optional
// source-address allow-list. With the feature disabled it fails closed;
// with an empty allow-list any source passes.
type IPGateMiddleware struct {
	cfg config.WebhookConfig
}

func NewIPGateMiddleware(cfg config.WebhookConfig) *IPGateMiddleware {
	return &IPGateMiddleware{cfg: cfg}
}

func (m *IPGateMiddleware) RequireAllowedIP(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.cfg.Enabled {
			logrus.Debug("Webhook endpoint hit while feature is disabled")
			return c.JSON(http.StatusForbidden, dto.NewErrorResponse("Webhook feature is disabled"))
		}

		sourceIP := c.RealIP()
		if len(m.cfg.AllowedIPs) > 0 && !containsString(m.cfg.AllowedIPs, sourceIP) {
			logrus.WithField("source_ip", sourceIP).Warn("Webhook request from disallowed IP")
			return c.JSON(http.StatusForbidden, dto.NewErrorResponse("IP not allowed"))
		}

		return next(c)
	}
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
