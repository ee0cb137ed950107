package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/piternoufi/quarry-orders-api/config"
	"github.com/piternoufi/quarry-orders-api/controllers"
	"github.com/piternoufi/quarry-orders-api/logger"
	"github.com/piternoufi/quarry-orders-api/middleware"
	"github.com/piternoufi/quarry-orders-api/models"
	"github.com/piternoufi/quarry-orders-api/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel)
	logger.Logger.Info("Starting Quarry Orders API server...")

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	logger.Logger.Info("Database migration completed successfully")

	// Delivery-note document storage
	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitDocumentService(s3Service)

	// Report cache: Redis when configured, in-process otherwise
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisReportCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to configure Redis report cache: %v", err)
		}
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		services.SetReportCache(redisCache)
		logger.Logger.Info("Redis report cache connected")
	}

	// Initialize Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSAllowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	registerRoutes(router, cfg)

	// Start server
	port := ":" + cfg.Port
	logger.Logger.Infof("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// registerRoutes wires the API surface. Everything except the health check
// sits behind JWT validation; role checks happen in the handlers after the
// user row is loaded.
func registerRoutes(router *gin.Engine, cfg *config.Config) {
	v1 := router.Group("/api/v1")

	// Health check endpoint
	v1.GET("/health", healthCheck)

	authorized := v1.Group("")
	authorized.Use(middleware.EnsureValidToken(cfg))
	{
		// Orders
		authorized.POST("/orders", controllers.CreateOrder)
		authorized.GET("/orders", controllers.ListOrders)
		authorized.GET("/orders/:id", controllers.GetOrder)
		authorized.PUT("/orders/:id", controllers.UpdateOrder)
		authorized.DELETE("/orders/:id", controllers.DeleteOrder)
		authorized.PUT("/orders/:id/status", controllers.UpdateOrderStatus)
		authorized.PUT("/orders/:id/delivery", controllers.RecordOrderDelivery)
		authorized.PUT("/orders/:id/confirm", controllers.ConfirmOrderDelivery)
		authorized.PUT("/orders/:id/rating", controllers.RateOrder)
		authorized.POST("/orders/:id/duplicate", controllers.DuplicateOrder)
		authorized.POST("/orders/:id/delivery-note", controllers.UploadDeliveryNote)

		// Clients and sites
		authorized.GET("/clients", controllers.ListClients)
		authorized.POST("/clients", controllers.CreateClient)
		authorized.PUT("/clients/:id", controllers.UpdateClient)
		authorized.DELETE("/clients/:id", controllers.DeleteClient)
		authorized.GET("/sites", controllers.ListSites)
		authorized.POST("/sites", controllers.CreateSite)
		authorized.PUT("/sites/:id", controllers.UpdateSite)
		authorized.DELETE("/sites/:id", controllers.DeleteSite)

		// Products
		authorized.GET("/products", controllers.ListProducts)
		authorized.POST("/products", controllers.CreateProduct)

		// Users
		authorized.POST("/users", controllers.CreateUser)
		authorized.GET("/users/me", controllers.GetCurrentUser)
		authorized.PUT("/users/me", controllers.UpdateCurrentUser)

		// Notifications and reminders
		authorized.GET("/notifications", controllers.ListNotifications)
		authorized.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
		authorized.POST("/reminders/run", controllers.RunReminders)

		// Messages
		authorized.POST("/messages", controllers.SendMessage)
		authorized.GET("/messages", controllers.ListMessages)
		authorized.PUT("/messages/:id/read", controllers.MarkMessageRead)

		// Reports
		authorized.GET("/reports/summary", controllers.GetReportSummary)
		authorized.GET("/reports/export.csv", controllers.ExportOrdersCSV)

		// Audit trail
		authorized.GET("/audit-logs", controllers.ListAuditLogs)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Quarry Orders API is running",
	})
}
