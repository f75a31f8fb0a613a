package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/zixindh/counter/internal/api"          // Custom package for API handlers
	"github.com/zixindh/counter/internal/config"       // Custom package for configuration
	"github.com/zixindh/counter/internal/middleware"   // Custom package for middleware
	"github.com/zixindh/counter/internal/storage"      // Storage interface
	"github.com/zixindh/counter/internal/storage/file" // File-backed totals store
	mysqlstore "github.com/zixindh/counter/internal/storage/mysql"
	"github.com/zixindh/counter/internal/utils" // Cache wrapper
	"github.com/zixindh/counter/internal/web"   // Embedded counter UI
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup the totals store for the configured backend
	var store storage.Storage
	switch cfg.StorageBackend {
	case config.BackendMySQL:
		// Connect to MySQL through GORM
		db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		store = mysqlstore.New(db)
	case config.BackendFile:
		// File store treats a missing or unreadable file as empty
		store = file.New(cfg.DataFile)
	default:
		logrus.Fatalf("unknown storage backend: %s", cfg.StorageBackend)
	}

	// Setup Redis cache when an address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Info("REDIS_ADDR not set, caching disabled")
	}
	cache := utils.NewCache(redisClient) // Nil client degrades to no-op

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Counter UI
	web.Register(r, cfg.PollInterval) // Serve the embedded page at /

	// Session routes
	r.POST("/session", api.LoginHandler(store, cfg.JWTSecret)) // Login by name
	r.DELETE("/session", api.LogoutHandler(cfg.JWTSecret))     // Switch user

	// Tally routes (protected by the session token)
	tallyGroup := r.Group("/api")
	tallyGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	tallyGroup.GET("/total", api.GetTotalHandler(store, cache, cfg.PollInterval))    // Current user's total
	tallyGroup.POST("/add", api.AddHandler(store, cache))                            // Add an amount
	tallyGroup.POST("/reset", api.ResetHandler(store, cache))                        // Reset to zero
	tallyGroup.GET("/totals", api.ListTotalsHandler(store, cache, cfg.PollInterval)) // All users' totals

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
