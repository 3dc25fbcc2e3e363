package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"forgecms-backend/api-service/handlers"
	"forgecms-backend/api-service/middleware"
	"forgecms-backend/api-service/services"
	"forgecms-backend/shared/config"
	"forgecms-backend/shared/database"
	"forgecms-backend/shared/utils/cache"

	_ "forgecms-backend/docs/swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ForgeCMS API
// @version 1.0
// @description Multi-tenant headless CMS: documents with draft/publish workflow, schema validation, asset storage and organization management

// @contact.name API Support
// @contact.email support@forgecms.dev

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// @tag.name auth
// @tag.description Authentication and user session management

// @tag.name documents
// @tag.description Document draft/publish lifecycle

// @tag.name assets
// @tag.description Asset upload and metadata management

// @tag.name schemas
// @tag.description Content schema registry

// @tag.name organizations
// @tag.description Organization management

// @tag.name members
// @tag.description Organization membership management

// @tag.name invitations
// @tag.description Organization invitations

// @tag.name api-keys
// @tag.description Organization API keys

// @tag.name realtime
// @tag.description Websocket content event stream

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize MinIO-backed storage
	storageService, err := services.NewStorageService()
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage service: %v", err)
	}
	assetService := services.NewAssetService(database.GetDB(), storageService)
	handlers.InitAssetHandlers(assetService, storageService)

	// Redis cache is optional: a miss only means slower published reads
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("⚠️ Cache manager unavailable, published reads fall back to database: %v", err)
	}

	// Rate limiter for mutating routes
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute)
	rateConfig := middleware.NewRateLimitConfig()

	router := gin.Default()

	// CORS for the admin UI
	corsConfig := cors.DefaultConfig()
	if cfg.FrontendURL != "" {
		corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-API-Key")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		dbHealthy := true
		if sqlDB, err := database.GetDB().DB(); err != nil || sqlDB.PingContext(checkCtx) != nil {
			dbHealthy = false
		}

		status := gin.H{
			"status":   "healthy",
			"service":  "api-service",
			"database": dbHealthy,
			"storage":  storageService.IsHealthy(checkCtx),
			"cache":    cache.GetCacheManager().IsHealthy(),
		}
		code := http.StatusOK
		if !dbHealthy {
			status["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		ctx.JSON(code, status)
	})

	// Auth routes (rate limited, no auth required for register/login)
	authRoutes := router.Group("/api/auth")
	authRoutes.Use(rateLimiter.RateLimitMiddleware(rateConfig))
	{
		authRoutes.POST("/register", handlers.Register)
		authRoutes.POST("/login", handlers.Login)
	}

	// Authenticated routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/auth/logout", handlers.Logout)
		api.GET("/auth/me", handlers.GetMe)

		// Organizations: listing, creation and acceptance work without an
		// active organization
		api.GET("/organizations", handlers.GetOrganizations)
		api.POST("/organizations", rateLimiter.RateLimitMiddleware(rateConfig), handlers.CreateOrganization)
		api.GET("/organizations/:id", handlers.GetOrganization)
		api.PATCH("/organizations/:id", handlers.UpdateOrganization)
		api.DELETE("/organizations/:id", handlers.DeleteOrganization)
		api.POST("/organizations/switch", handlers.SwitchOrganization)
		api.POST("/invitations/accept", handlers.AcceptInvitation)

		// Everything below acts on the principal's active organization
		org := api.Group("")
		org.Use(middleware.RequireOrganization())
		{
			org.GET("/organizations/members", handlers.GetMembers)
			org.PATCH("/organizations/members/:userId", handlers.UpdateMemberRole)
			org.DELETE("/organizations/members/:userId", handlers.RemoveMember)

			org.GET("/organizations/invitations", handlers.GetInvitations)
			org.POST("/organizations/invitations", handlers.CreateInvitation)
			org.DELETE("/organizations/invitations/:id", handlers.RevokeInvitation)

			org.GET("/organizations/api-keys", handlers.GetApiKeys)
			org.POST("/organizations/api-keys", handlers.CreateApiKey)
			org.DELETE("/organizations/api-keys/:id", handlers.RevokeApiKey)

			org.GET("/documents", handlers.GetDocuments)
			org.POST("/documents", rateLimiter.RateLimitMiddleware(rateConfig), handlers.CreateDocument)
			org.GET("/documents/:id", handlers.GetDocument)
			org.PUT("/documents/:id", handlers.UpdateDocument)
			org.DELETE("/documents/:id", handlers.DeleteDocument)
			org.POST("/documents/:id/publish", handlers.PublishDocument)
			org.DELETE("/documents/:id/publish", handlers.UnpublishDocument)
			org.GET("/documents/:id/published", handlers.GetPublishedDocument)

			org.GET("/assets", handlers.GetAssets)
			org.POST("/assets", rateLimiter.RateLimitMiddleware(rateConfig), handlers.UploadAsset)
			org.GET("/assets/:id", handlers.GetAsset)
			org.PATCH("/assets/:id", handlers.UpdateAsset)
			org.DELETE("/assets/:id", handlers.DeleteAsset)
			org.GET("/assets/:id/url", handlers.GetAssetSignedURL)

			org.GET("/schemas", handlers.GetSchemas)
			org.GET("/schemas/:type", handlers.GetSchema)

			org.GET("/realtime", handlers.ConnectRealtime)
		}
	}

	// Swagger documentation UI, development only
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Swagger documentation not available in production",
			})
		}
	})

	// Server start
	port := strings.Split(cfg.APIServiceURL, ":")[2]
	log.Printf("API Service is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
