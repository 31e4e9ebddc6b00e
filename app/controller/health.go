package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	dto "github.com/vibast-solutions/ms-go-relay-keys/app/dto/http"
)

var endpoints = []string{
	"GET /",
	"GET /test",
	"POST /api/generate-key",
	"POST /api/validate-key",
}

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (c *HealthController) Introspect(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dto.IntrospectionResponse{
		Success:   true,
		Message:   "Relay key provisioning service is running",
		Endpoints: endpoints,
		Timestamp: time.Now(),
	})
}
