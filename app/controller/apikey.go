package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	dto "github.com/vibast-solutions/ms-go-relay-keys/app/dto/http"
	"github.com/vibast-solutions/ms-go-relay-keys/app/entity"
	"github.com/vibast-solutions/ms-go-relay-keys/app/service"
	"github.com/vibast-solutions/ms-go-relay-keys/config"
)

type KeyController struct {
	apiKeyService service.APIKeyService
	notifier      service.Notifier
	cfg           *config.Config
}

func NewKeyController(apiKeyService service.APIKeyService, notifier service.Notifier, cfg *config.Config) *KeyController {
	return &KeyController{
		apiKeyService: apiKeyService,
		notifier:      notifier,
		cfg:           cfg,
	}
}

func (c *KeyController) GenerateKey(ctx echo.Context) error {
	var req dto.GenerateKeyRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid request body"))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Name is required and must be a non-empty string"))
	}
	if req.TokenLimit != nil && *req.TokenLimit <= 0 {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Token limit must be a positive number"))
	}
	if req.DailyCostLimit != nil && *req.DailyCostLimit <= 0 {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Daily cost limit must be a positive number"))
	}
	if req.MonthlyCostLimit != nil && *req.MonthlyCostLimit <= 0 {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Monthly cost limit must be a positive number"))
	}

	expirationDays := c.cfg.DefaultExpirationDays
	if req.ExpirationDays != nil {
		if *req.ExpirationDays < 0 {
			return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Expiration days must be a non-negative integer"))
		}
		expirationDays = *req.ExpirationDays
	}

	var expiresAt *time.Time
	if expirationDays > 0 {
		t := time.Now().AddDate(0, 0, expirationDays)
		expiresAt = &t
	}

	generated, err := c.apiKeyService.GenerateAPIKey(ctx.Request().Context(), service.GenerateKeyParams{
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		TokenLimit:       req.TokenLimit,
		DailyCostLimit:   req.DailyCostLimit,
		MonthlyCostLimit: req.MonthlyCostLimit,
		ExpiresAt:        expiresAt,
		CreatedBy:        "webhook",
	})
	if err != nil {
		logrus.WithError(err).WithField("name", name).Error("API key issuance failed")
		return ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Failed to generate API key"))
	}

	// Notification failure is absorbed here: the key is already
	// created, so the error is observed for logging only.
	if req.NotifyFeishu == nil || *req.NotifyFeishu {
		event := service.KeyCreatedEvent{
			SecretValue:      generated.SecretValue,
			KeyID:            generated.Key.KeyID,
			Name:             generated.Key.Name,
			Description:      generated.Key.Description,
			KeyPrefix:        generated.Key.KeyPrefix,
			TokenLimit:       req.TokenLimit,
			DailyCostLimit:   req.DailyCostLimit,
			MonthlyCostLimit: req.MonthlyCostLimit,
			ExpiresAt:        expiresAt,
			CreatedAt:        generated.Key.CreatedAt,
			WebhookOverride:  strings.TrimSpace(req.FeishuWebhook),
		}
		if err := c.notifier.NotifyKeyCreated(ctx.Request().Context(), event); err != nil {
			logrus.WithError(err).WithField("key_id", generated.Key.KeyID).Warn("Feishu notification failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"key_id":     generated.Key.KeyID,
		"name":       generated.Key.Name,
		"key_prefix": generated.Key.KeyPrefix,
	}).Info("API key created via webhook")

	return ctx.JSON(http.StatusOK, dto.GenerateKeyResponse{
		Success: true,
		Data:    keyData(generated.Key),
		APIKey:  generated.SecretValue,
	})
}

func (c *KeyController) ValidateKey(ctx echo.Context) error {
	var req dto.ValidateKeyRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("Invalid request body"))
	}

	if strings.TrimSpace(req.APIKey) == "" {
		return ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse("apiKey is required"))
	}

	key, err := c.apiKeyService.ValidateAPIKey(ctx.Request().Context(), req.APIKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			logrus.WithField("source_ip", ctx.RealIP()).Debug("API key validation rejected")
			return ctx.JSON(http.StatusNotFound, dto.NewErrorResponse("API key not found"))
		}
		logrus.WithError(err).Error("API key validation failed")
		return ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error"))
	}

	return ctx.JSON(http.StatusOK, dto.ValidateKeyResponse{
		Success: true,
		Data:    keyData(key),
	})
}

func keyData(key *entity.APIKey) dto.KeyData {
	data := dto.KeyData{
		ID:          key.KeyID,
		Name:        key.Name,
		Description: key.Description,
		KeyPrefix:   key.KeyPrefix,
		CreatedAt:   key.CreatedAt,
		Status:      key.Status,
	}

	if key.TokenLimit.Valid {
		data.TokenLimit = &key.TokenLimit.Int64
	}
	if key.DailyCostLimit.Valid {
		data.DailyCostLimit = &key.DailyCostLimit.Float64
	}
	if key.MonthlyCostLimit.Valid {
		data.MonthlyCostLimit = &key.MonthlyCostLimit.Float64
	}
	if key.ExpiresAt.Valid {
		data.ExpiresAt = &key.ExpiresAt.Time
	}

	return data
}
