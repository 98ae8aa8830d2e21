package routes

import (
	"carmarket-backend/internal/api/handlers"
	"carmarket-backend/internal/api/middleware"
	"carmarket-backend/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies is everything the HTTP surface needs. Services are built by
// the caller so the worker and the API can share them.
type Dependencies struct {
	Auth     handlers.AuthAPI
	Listings handlers.ListingAPI
	Alerts   handlers.AlertAPI
	Chat     handlers.ChatAPI

	PingDB handlers.DatabasePinger
	Redis  handlers.RedisHealth

	Limiter         ratelimit.RateLimiter
	RateLimitConfig *ratelimit.Config

	Log zerolog.Logger
}

func SetupRoutes(router *gin.Engine, d Dependencies) {
	authHandler := handlers.NewAuthHandler(d.Auth)
	userHandler := handlers.NewUserHandler(d.Auth, d.Listings)
	listingHandler := handlers.NewListingHandler(d.Listings)
	alertHandler := handlers.NewAlertHandler(d.Alerts)
	chatHandler := handlers.NewChatHandler(d.Chat)
	healthHandler := handlers.NewHealthHandler(d.PingDB, d.Redis)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	// Optional auth runs first so the limiter can key on the user.
	api.Use(middleware.OptionalAuthMiddleware(d.Auth))
	if d.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(d.Limiter, d.RateLimitConfig, d.Log))
	}

	api.GET("/health", healthHandler.HealthCheck)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/listings", listingHandler.SearchListings)
	api.GET("/listings/:id", listingHandler.GetListing)
	api.GET("/listings/:id/images", listingHandler.GetImages)
	api.GET("/listings/:id/documents", listingHandler.GetDocuments)

	chat := api.Group("/chat/sessions")
	{
		chat.POST("", chatHandler.CreateSession)
		chat.GET("/:id", chatHandler.GetSession)
		chat.POST("/:id/messages", chatHandler.SendMessage)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(d.Auth))
	{
		me := protected.Group("/me")
		{
			me.GET("", authHandler.GetProfile)
			me.PATCH("/phone", userHandler.UpdatePhone)
			me.GET("/listings", userHandler.GetMyListings)
		}

		listings := protected.Group("/listings")
		{
			listings.POST("", listingHandler.CreateListing)
			listings.PUT("/:id", listingHandler.UpdateListing)
			listings.PATCH("/:id/status", listingHandler.ChangeStatus)
			listings.DELETE("/:id", listingHandler.DeleteListing)
			listings.POST("/:id/images", listingHandler.AddImages)
			listings.DELETE("/:id/images/:imageId", listingHandler.DeleteImage)
			listings.PATCH("/:id/images/:imageId/primary", listingHandler.SetPrimaryImage)
			listings.POST("/:id/documents", listingHandler.AddDocument)
			listings.POST("/:id/verify-logbook", listingHandler.VerifyLogbook)
		}

		protected.DELETE("/documents/:id", listingHandler.DeleteDocument)

		alerts := protected.Group("/alerts")
		{
			alerts.GET("", alertHandler.GetAlerts)
			alerts.POST("", alertHandler.CreateAlert)
			alerts.DELETE("/:id", alertHandler.DeleteAlert)
			alerts.PATCH("/:id/toggle", alertHandler.ToggleAlert)
		}
	}
}
