package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vibast-solutions/ms-go-relay-keys/app/controller"
	dto "github.com/vibast-solutions/ms-go-relay-keys/app/dto/http"
)

func TestIntrospect(t *testing.T) {
	healthController := controller.NewHealthController()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := healthController.Introspect(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.IntrospectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response decode failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success response")
	}
	if resp.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	want := map[string]bool{
		"POST /api/generate-key": false,
		"POST /api/validate-key": false,
	}
	for _, endpoint := range resp.Endpoints {
		if _, ok := want[endpoint]; ok {
			want[endpoint] = true
		}
	}
	for endpoint, seen := range want {
		if !seen {
			t.Fatalf("expected endpoint %q to be listed", endpoint)
		}
	}
}
