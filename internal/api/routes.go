// Package api contains the API routes for the Momentum API
package api

import (
	"fmt"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/mytradeapp/momentumapi/internal/api/handlers"
	"github.com/mytradeapp/momentumapi/internal/api/middleware"
	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/internal/config"
	"github.com/mytradeapp/momentumapi/internal/repository"
	"github.com/mytradeapp/momentumapi/internal/service"
	"github.com/mytradeapp/momentumapi/pkg/utils/response"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services bundles the service layer, shared between routes and cron jobs so
// the mapping caches have a single owner
type Services struct {
	Resolver  *service.ResolverService
	Quotes    *service.QuoteService
	Watchlist *service.WatchlistService
	Sizing    *service.SizingService
	Orders    *service.OrderService
	PnL       *service.PnLService
}

// BuildServices wires the service layer. marketClient may be nil, every
// provider call then degrades to an empty or failed result.
func BuildServices(db *gorm.DB, redisClient *redis.Client, marketClient *broker.Client) *Services {
	mappingRepo := repository.NewMappingRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)

	resolver := service.NewResolverService(mappingRepo)
	quotes := service.NewQuoteService(marketClient)

	return &Services{
		Resolver:  resolver,
		Quotes:    quotes,
		Watchlist: service.NewWatchlistService(watchlistRepo, resolver, quotes, redisClient),
		Sizing:    service.NewSizingService(resolver, marketClient),
		Orders:    service.NewOrderService(resolver, marketClient),
		PnL:       service.NewPnLService(marketClient),
	}
}

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *Services) {

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	api.GET("/", indexRoute)

	// Create a group for protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))

	// Watchlist routes (protected)
	watchlistHandler := handlers.NewWatchlistHandler(svc.Watchlist)
	watchlistGroup := protected.Group("/watchlist")
	watchlistGroup.GET("", watchlistHandler.GetWatchlist)
	watchlistGroup.GET("/refresh", watchlistHandler.RefreshWatchlist)
	watchlistGroup.POST("/stocks", watchlistHandler.AddStock)
	watchlistGroup.PATCH("/stocks/:index", watchlistHandler.UpdateStock)
	watchlistGroup.DELETE("/stocks/:index", watchlistHandler.DeleteStock)
	watchlistGroup.POST("/autobuy", watchlistHandler.MarkAutoBuy)
	watchlistGroup.GET("/autobuy", watchlistHandler.GetAutoBuyStatus)

	// Mapping routes (protected)
	mappingHandler := handlers.NewMappingHandler(svc.Resolver)
	mappingGroup := protected.Group("/mapping")
	mappingGroup.GET("/resolve", mappingHandler.ResolveSymbol)
	mappingGroup.POST("/rebuild", mappingHandler.RebuildMapping)
	mappingGroup.GET("/status", mappingHandler.MappingStatus)

	// Sizing, order and PnL routes (protected)
	orderHandler := handlers.NewOrderHandler(svc.Resolver, svc.Sizing, svc.Orders, svc.PnL)
	protected.POST("/position/size", orderHandler.PositionSize)
	protected.POST("/order", orderHandler.PlaceOrder)
	protected.GET("/pnl", orderHandler.TodayPnL)
}

// indexRoute sets up the index route for the API
func indexRoute(c echo.Context) error {
	cfg, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	message := fmt.Sprintf("%s %s", cfg.APIName, cfg.APIVersion)
	return response.SuccessResponse(c, message)
}
