package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/config"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/database"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/handlers"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/logger"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/middleware"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/services"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/validator"

	_ "github.com/danielodella-summer87/cafecitos-sub000/internal/docs" // Import swagger docs
)

// @title           Cafecitos API
// @version         1.0
// @description     Point-balance ledger for cafecitos earned and redeemed at affiliated cafés.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	staffService := services.NewStaffService(db)
	directoryService := services.NewDirectoryService(db)
	policyService := services.NewPolicyService(db)
	ledgerService := services.NewLedgerService(db, directoryService, policyService)
	reportService := services.NewReportService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(staffService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, staffService, auditService)
	reportHandler := handlers.NewReportHandler(reportService, staffService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
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

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Ledger operations
	points := protected.Group("/points")
	points.POST("/issue", ledgerHandler.Issue)
	points.POST("/redeem", ledgerHandler.Redeem)
	points.POST("/transfer", ledgerHandler.Transfer)
	points.POST("/adjust", ledgerHandler.Adjust)

	// Balance reads
	profiles := protected.Group("/profiles")
	profiles.GET("/:id/balance", ledgerHandler.GetBalance)
	profiles.GET("/:id/cafes/:cafeId/summary", ledgerHandler.GetCafeSummary)
	profiles.GET("/:id/transactions", ledgerHandler.GetTransactions)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/rollup", reportHandler.Rollup)
	reports.GET("/top-consumers", reportHandler.TopConsumers)
	reports.GET("/alerts", reportHandler.Alerts)

	log.Infof("Starting server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
