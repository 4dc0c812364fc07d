package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/shivajik/prodtracking-sub000/internal/config"
	"github.com/shivajik/prodtracking-sub000/internal/events"
	"github.com/shivajik/prodtracking-sub000/internal/handlers"
	"github.com/shivajik/prodtracking-sub000/internal/importer"
	"github.com/shivajik/prodtracking-sub000/internal/middleware"
	"github.com/shivajik/prodtracking-sub000/internal/repository"
	"github.com/shivajik/prodtracking-sub000/internal/tracking"
)

// @title Seed Product Tracking API
// @version 1.0.0
// @description Registry of regulatory seed product records with bulk import and public tracking lookup
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8088
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	var redisClient *redis.Client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
	} else {
		redisClient = redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
			redisClient = nil
		} else {
			log.Println("✓ Redis connected successfully")
		}
		cancel()
	}

	// Initialize repository
	productsRepo := repository.NewProductsRepository(db, redisClient)

	// Initialize event publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	if os.Getenv("NATS_URL") != "" {
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	// Tracking id generator, checked against the store before assignment
	idGenerator := tracking.NewGenerator(cfg.TrackingPrefix, productsRepo.TrackingIDExists)

	// Import pipeline
	mapper := importer.NewMapper(cfg.Organization)
	imp := importer.New(productsRepo, idGenerator, mapper, logger)

	// Initialize handlers
	productsHandler := handlers.NewProductsHandler(productsRepo, idGenerator, eventsPublisher, cfg.Organization, cfg.MaxPageSize, logger)
	importHandler := handlers.NewImportHandler(imp, productsRepo, eventsPublisher, logger)
	exportHandler := handlers.NewExportHandler(productsRepo, cfg.PublicBaseURL, logger)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)

	// Public tracking lookup (no auth, approved records only)
	router.GET("/api/v1/track/:code", productsHandler.TrackProduct)

	// Protected API routes
	api := router.Group("/api/v1")
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
	} else {
		api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}

	products := api.Group("/products")
	{
		products.POST("", productsHandler.CreateProduct)
		products.GET("", productsHandler.GetProducts)
		products.GET("/:id", productsHandler.GetProduct)
		products.PUT("/:id", productsHandler.UpdateProduct)

		// Admin-only operations
		products.DELETE("/:id", middleware.RequireRole(middleware.RoleAdmin), productsHandler.DeleteProduct)
		products.PUT("/:id/status", middleware.RequireRole(middleware.RoleAdmin), productsHandler.UpdateProductStatus)

		// Import/Export
		products.GET("/import/template", importHandler.GetImportTemplate)
		products.POST("/import", importHandler.ImportProducts)
		products.GET("/import/history", importHandler.ImportHistory)
		products.POST("/export", exportHandler.ExportProducts)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Seed product tracking service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down prodtracking service...")
}
