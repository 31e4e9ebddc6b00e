package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vibast-solutions/ms-go-relay-keys/app/middleware"
	"github.com/vibast-solutions/ms-go-relay-keys/config"
)

func newGateContext(remoteAddr string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-key", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireAllowedIP_FeatureDisabled(t *testing.T) {
	gate := middleware.NewIPGateMiddleware(config.WebhookConfig{
		Enabled:    false,
		AllowedIPs: nil,
	})

	ctx, rec := newGateContext("10.0.0.1:1234")
	if err := gate.RequireAllowedIP(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Webhook feature is disabled") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireAllowedIP_NotInAllowList(t *testing.T) {
	gate := middleware.NewIPGateMiddleware(config.WebhookConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.1", "10.0.0.2"},
	})

	ctx, rec := newGateContext("192.168.1.9:1234")
	if err := gate.RequireAllowedIP(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "IP not allowed") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireAllowedIP_InAllowList(t *testing.T) {
	gate := middleware.NewIPGateMiddleware(config.WebhookConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.1"},
	})

	ctx, rec := newGateContext("10.0.0.1:5555")
	if err := gate.RequireAllowedIP(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRequireAllowedIP_EmptyListPassesAll(t *testing.T) {
	gate := middleware.NewIPGateMiddleware(config.WebhookConfig{
		Enabled:    true,
		AllowedIPs: nil,
	})

	ctx, rec := newGateContext("203.0.113.7:9999")
	if err := gate.RequireAllowedIP(okHandler)(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
