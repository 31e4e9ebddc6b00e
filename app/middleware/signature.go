package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	dto "github.com/vibast-solutions/ms-go-relay-keys/app/dto/http"
	"github.com/vibast-solutions/ms-go-relay-keys/app/signature"
	"github.com/vibast-solutions/ms-go-relay-keys/config"
)

// SignatureMiddleware authenticates requests signed with the shared
// webhook secret. The request body is buffered for verification and
// restored for downstream handlers.
type SignatureMiddleware struct {
	verifier *signature.Verifier
}

func NewSignatureMiddleware(cfg config.WebhookConfig) *SignatureMiddleware {
	return &SignatureMiddleware{
		verifier: signature.NewVerifier(cfg.Secret, cfg.TimestampTolerance),
	}
}

func (m *SignatureMiddleware) VerifySignature(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		body, err := readAndRestoreBody(req)
		if err != nil {
			logrus.WithError(err).Error("Failed to read request body for signature verification")
			return c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error"))
		}

		sigHeader := req.Header.Get(signature.HeaderSignature)
		tsHeader := req.Header.Get(signature.HeaderTimestamp)

		if err := m.verifier.Verify(body, sigHeader, tsHeader, time.Now()); err != nil {
			switch {
			case errors.Is(err, signature.ErrMissingSignatureOrTimestamp):
				logrus.WithField("source_ip", c.RealIP()).Debug("Webhook request without signature headers")
				return c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Missing signature or timestamp"))
			case errors.Is(err, signature.ErrInvalidTimestamp):
				logrus.WithFields(logrus.Fields{
					"source_ip": c.RealIP(),
					"timestamp": tsHeader,
				}).Warn("Webhook request with stale or malformed timestamp")
				return c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Timestamp too old or invalid"))
			default:
				logrus.WithField("source_ip", c.RealIP()).Warn("Webhook request with invalid signature")
				return c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Invalid signature"))
			}
		}

		return next(c)
	}
}

func readAndRestoreBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
