package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/quayside/storefront/internal/server/http/handlers"
	"github.com/quayside/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CheckoutFacade, health handlers.HealthChecker, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	checkoutHandler := handlers.NewCheckoutHandler(facade)
	healthHandler := handlers.NewHealthHandler(health)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)

	checkout := api.Group("/checkout")
	checkout.POST("/orders", checkoutHandler.Create)
	checkout.GET("/orders/:orderID", checkoutHandler.Get)
	checkout.PATCH("/orders/:orderID/address", checkoutHandler.PatchAddress)
	checkout.POST("/orders/:orderID/finalize", checkoutHandler.Finalize)
	checkout.GET("/orders/:orderID/confirmation", checkoutHandler.Confirmation)

	return engine
}
