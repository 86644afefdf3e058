package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-service/internal/cache"
	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
	"storefront-service/internal/workers"
)

// @title Storefront API
// @version 1.0.0
// @description Storefront session service: per-session carts with background sync, product comparison and related-product recommendations
// @termsOfService http://swagger.io/terms/

// @contact.name Storefront API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
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

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client (optional - graceful degradation if Redis unavailable)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse Redis URL, continuing without caching")
		} else {
			redisClient = redis.NewClient(opt)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.WithError(err).Warn("Failed to connect to Redis, continuing without caching")
				redisClient = nil
			} else {
				logger.Info("✓ Connected to Redis for catalog caching")
			}
		}
	} else {
		logger.Info("REDIS_URL not configured, caching disabled")
	}

	// Initialize repository and clients
	catalogRepo := repository.NewCatalogRepository(db, redisClient)
	cartClient := clients.NewCartClient()

	// Initialize NATS events publisher
	eventsPublisher, err := events.NewPublisher(logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize events publisher (cart events won't be published)")
		eventsPublisher = nil
	} else {
		defer eventsPublisher.Close()
		logger.Info("✓ NATS events publisher initialized")
	}

	// Initialize services
	sessionStore := services.NewSessionStore()
	syncService := services.NewCartSyncService(cartClient, logger)

	var cartEvents services.CartEventPublisher
	if eventsPublisher != nil {
		cartEvents = eventsPublisher
	}
	cartService := services.NewCartService(sessionStore, catalogRepo, cartClient, syncService, cartEvents, logger)
	comparisonService := services.NewComparisonService(sessionStore, catalogRepo, logger)
	recommendationService := services.NewRecommendationService(catalogRepo, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cache.NewCatalogCache(redisClient, repository.CatalogListCacheTTL))
	cartHandler := handlers.NewCartHandler(cartService)
	comparisonHandler := handlers.NewComparisonHandler(comparisonService)
	productHandler := handlers.NewProductHandler(catalogRepo, recommendationService)
	importHandler := handlers.NewImportHandler(catalogRepo)

	// Initialize background workers
	syncWorker := workers.NewCartSyncWorker(syncService, cfg.SyncFlushInterval, logger)
	reaperWorker := workers.NewSessionReaperWorker(sessionStore, cfg.SessionReapInterval, cfg.SessionMaxIdle, logger)

	// Initialize event subscribers
	orderSubscriber, err := events.NewOrderEventSubscriber(cartService, logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize order event subscriber (carts won't clear on order placement)")
		orderSubscriber = nil
	}
	productSubscriber, err := events.NewProductEventSubscriber(catalogRepo, logger)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize product event subscriber (catalog projection via events disabled)")
		productSubscriber = nil
	}

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Tenant-ID", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health endpoints
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.TenantMiddleware())
	{
		cart := v1.Group("/cart")
		cart.Use(middleware.SessionMiddleware())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items", cartHandler.UpdateItem)
			cart.POST("/login", cartHandler.Login)
			cart.POST("/logout", cartHandler.Logout)
		}

		compare := v1.Group("/compare")
		compare.Use(middleware.SessionMiddleware())
		{
			compare.GET("", comparisonHandler.GetComparison)
			compare.DELETE("", comparisonHandler.ClearComparison)
			compare.POST("/toggle", comparisonHandler.ToggleComparison)
			compare.DELETE("/:productId", comparisonHandler.RemoveFromComparison)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/related", productHandler.GetRelatedProducts)
		}

		catalog := v1.Group("/catalog")
		{
			catalog.POST("/import", importHandler.ImportCatalog)
		}
	}

	// Start background workers
	syncWorker.Start()
	reaperWorker.Start()
	logger.Info("✓ Background workers started")

	// Start event subscribers
	subscriberCtx, stopSubscribers := context.WithCancel(context.Background())
	defer stopSubscribers()
	if orderSubscriber != nil {
		if err := orderSubscriber.Start(subscriberCtx); err != nil {
			logger.WithError(err).Warn("Failed to start order event subscriber")
		}
	}
	if productSubscriber != nil {
		if err := productSubscriber.Start(subscriberCtx); err != nil {
			logger.WithError(err).Warn("Failed to start product event subscriber")
		}
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("port", cfg.Port).Info("Starting storefront-service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down storefront-service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop subscribers first so no new cart mutations arrive, then drain
	// the sync queue via the worker's final flush.
	stopSubscribers()
	syncWorker.Stop()
	reaperWorker.Stop()
	logger.Info("✓ Background workers stopped")

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Storefront service stopped")
}
