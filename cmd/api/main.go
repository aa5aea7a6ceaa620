package main

import (
	"fmt"
	"net/http"
	"os"

	"flowjournal/internal/auth"
	"flowjournal/internal/config"
	"flowjournal/internal/database"
	"flowjournal/internal/handlers"
	"flowjournal/internal/logger"
	"flowjournal/internal/mailer"
	"flowjournal/internal/middleware"
	"flowjournal/internal/services"
	"flowjournal/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	_ "flowjournal/internal/docs" // Import swagger docs
)

// @title           FlowJournal API
// @version         1.0
// @description     FlowJournal is a trading journal that lets traders record trades, derive realized P&L, and track performance statistics.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Shared infrastructure
	db := dbManager.DB()
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpirationDur)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)

	// Initialize services
	verificationService := services.NewVerificationService(db, smtpMailer, cfg.FrontendURL)
	userService := services.NewUserService(db, verificationService)
	oauthService := services.NewOAuthService(db)
	tradeService := services.NewTradeService(db)
	statsService := services.NewStatsService(db)
	settingsService := services.NewSettingsService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, verificationService, issuer)
	tradeHandler := handlers.NewTradeHandler(tradeService, statsService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public auth routes
	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/verify/:token", authHandler.VerifyEmail)
	authRoutes.POST("/resend-verification", authHandler.ResendVerification)

	// Google OAuth routes, enabled only when credentials are configured
	if cfg.GoogleClientID != "" {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
		oauthHandler := handlers.NewOAuthHandler(oauthService, issuer, oauthConfig, cfg.FrontendURL)
		authRoutes.GET("/google", oauthHandler.GoogleLogin)
		authRoutes.GET("/google/callback", oauthHandler.GoogleCallback)
	} else {
		log.Warn("Google OAuth disabled: GOOGLE_CLIENT_ID not set")
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(issuer))

	protected.GET("/auth/me", authHandler.GetMe)
	protected.POST("/auth/complete-onboarding", authHandler.CompleteOnboarding)
	protected.DELETE("/auth/delete-account", authHandler.DeleteAccount)

	trades := protected.Group("/trades")
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("", tradeHandler.ListTrades)
	trades.GET("/stats", tradeHandler.GetStats)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.PUT("/:id", tradeHandler.UpdateTrade)
	trades.DELETE("/:id", tradeHandler.DeleteTrade)

	settings := protected.Group("/settings")
	settings.GET("", settingsHandler.GetSettings)
	settings.PUT("", settingsHandler.UpdateSettings)

	log.Infof("Starting FlowJournal backend server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}
