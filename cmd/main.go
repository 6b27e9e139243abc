package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"drivebox/config"
	"drivebox/database"
	"drivebox/repositories"
	"drivebox/routes"
	"drivebox/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file before config.LoadConfig reads the environment
	loadEnvFile()

	// Initialize configuration
	config.LoadConfig()
	cfg := config.AppConfig

	// Connect to the database; Connect also runs migrations
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Connected to %s database successfully", cfg.DBType)

	// Ensure the superadmin account exists before serving traffic
	authService := services.NewAuthService(repositories.NewUserRepository(db), cfg.JWTSecret, cfg.JWTExpiration)
	if err := authService.BootstrapSuperadmin(cfg.SuperadminUsername, cfg.SuperadminPassword); err != nil {
		log.Fatalf("Failed to bootstrap superadmin: %v", err)
	}

	// Set up Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	// Set up CORS
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	// Set up API routes
	api := router.Group("/api")
	if err := routes.SetupRoutes(api, db, cfg); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Start the server
	log.Printf("Starting DriveBox server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadEnvFile handles loading .env file from multiple possible locations
func loadEnvFile() {
	pwd, err := os.Getwd()
	if err != nil {
		log.Printf("Could not get working directory: %v", err)
		return
	}

	envPaths := []string{
		".env",                     // Current directory
		"../.env",                  // Parent directory
		filepath.Join(pwd, ".env"), // Absolute path to current dir
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err == nil {
				absPath, _ := filepath.Abs(envPath)
				log.Printf("Loaded environment variables from: %s", absPath)
				return
			}
		}
	}

	log.Println("No .env file found, using system environment variables")
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")

		var allowOrigin string
		if len(allowedOrigins) == 0 {
			allowOrigin = "*"
		} else {
			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == requestOrigin {
					allowOrigin = allowedOrigin
					break
				}
			}
			if allowOrigin == "" {
				// Unknown origin: answer with the first configured one so the
				// browser rejects the response instead of the server leaking data.
				allowOrigin = allowedOrigins[0]
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
