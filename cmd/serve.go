package cmd

import (
	"database/sql"
	"net"
	"net/http"

	"github.com/vibast-solutions/ms-go-relay-keys/app/controller"
	dto "github.com/vibast-solutions/ms-go-relay-keys/app/dto/http"
	"github.com/vibast-solutions/ms-go-relay-keys/app/middleware"
	"github.com/vibast-solutions/ms-go-relay-keys/app/repository"
	"github.com/vibast-solutions/ms-go-relay-keys/app/service"
	"github.com/vibast-solutions/ms-go-relay-keys/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server exposing the signed key provisioning endpoint.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	apiKeyRepo := repository.NewAPIKeyRepository(db)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, cfg.KeyPrefix)
	notifier := service.NewFeishuNotifier(cfg.Feishu)

	startHTTPServer(cfg, apiKeyService, notifier)
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func startHTTPServer(cfg *config.Config, apiKeyService service.APIKeyService, notifier service.Notifier) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	keyController := controller.NewKeyController(apiKeyService, notifier, cfg)
	healthController := controller.NewHealthController()
	ipGate := middleware.NewIPGateMiddleware(cfg.Webhook)
	signatureMiddleware := middleware.NewSignatureMiddleware(cfg.Webhook)

	e.GET("/", healthController.Introspect)
	e.GET("/test", healthController.Introspect)

	api := e.Group("/api")
	api.GET("/", healthController.Introspect)
	api.GET("/test", healthController.Introspect)
	api.POST("/generate-key", keyController.GenerateKey, ipGate.RequireAllowedIP, signatureMiddleware.VerifySignature)
	api.POST("/validate-key", keyController.ValidateKey)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

// jsonErrorHandler keeps every error response in the same envelope the
// handlers use, including panics recovered by the Recover middleware.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if httpErr, ok := err.(*echo.HTTPError); ok {
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("uri", c.Request().RequestURI).Error("Unhandled request error")
		message = "Internal server error"
	}

	if writeErr := c.JSON(status, dto.NewErrorResponse(message)); writeErr != nil {
		logrus.WithError(writeErr).Error("Failed to write error response")
	}
}
