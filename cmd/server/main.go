// Package main is the entry point for the Momentum API
package main

import (
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/mytradeapp/momentumapi/internal/api"
	"github.com/mytradeapp/momentumapi/internal/api/middleware"
	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/internal/config"
	"github.com/mytradeapp/momentumapi/internal/repository"
	"github.com/mytradeapp/momentumapi/internal/secrets"
	"github.com/mytradeapp/momentumapi/internal/service"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

func main() {
	// Setup logger
	defer zaplogger.Sync()

	// startUpMessage
	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Momentum Watchlist API")

	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		zaplogger.Fatal("failed to load configuration", zaplogger.Fields{"error": err})
	}
	zaplogger.SetLogLevel(cfg.ServerLogLevel)
	zaplogger.Info("  * configuration loaded")

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Setup middleware
	middleware.SetupLoggerMiddleware(e)

	// Connect to Postgres
	db, err := repository.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Add the database sink to the logger
	if err := zaplogger.InitLogger(db); err != nil {
		zaplogger.Warn("database log sink unavailable", zaplogger.Fields{"error": err.Error()})
	}

	// Connect Redis, watchlist updates are not published without it
	redisClient, err := repository.ConnectRedis(cfg)
	if err != nil {
		zaplogger.Warn("redis unavailable, watchlist updates will not be published", zaplogger.Fields{
			"error": err.Error(),
		})
		redisClient = nil
	}

	// Broker credentials, the API runs degraded without them
	var marketClient *broker.Client
	secretStore := secrets.NewStore()
	clientID, accessToken, err := secretStore.BrokerCredentials()
	if err != nil {
		zaplogger.Warn("broker credentials missing, running without provider connection", zaplogger.Fields{
			"error": err.Error(),
		})
	} else {
		marketClient = broker.NewWithBaseURL(clientID, accessToken, cfg.BrokerBaseURL)
		zaplogger.Info("  * broker client ready")
	}

	// Build services and routes
	services := api.BuildServices(db, redisClient, marketClient)
	api.SetupRoutes(e, cfg, services)

	// Setup and start cron jobs
	cronService := service.NewCronService(cfg, services.Resolver, services.Watchlist)
	cronService.Start()

	// Start the server
	startServer(e, cfg)
}

// startServer starts the Echo server on the specified port
func startServer(e *echo.Echo, cfg *config.Config) {
	port := cfg.ServerPort
	if port == "" {
		port = "3009"
	}
	startupMessage := fmt.Sprintf("%s %s Server [:%s] started", cfg.APIName, cfg.APIVersion, port)

	zaplogger.Info(config.SingleLine)
	zaplogger.Info(startupMessage)
	zaplogger.Info(config.SingleLine)
	e.Logger.Fatal(e.Start(":" + port))
}
