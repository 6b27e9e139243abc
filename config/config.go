package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string

	// Database. DBType selects the gorm dialector: "sqlite" (default,
	// DBName is the file path) or "postgres".
	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	// Content store: a single local directory of write-once byte objects.
	StoragePath string

	JWTSecret     string
	JWTExpiration time.Duration
	JWTIssuer     string

	// Seed credentials for the idempotent superadmin bootstrap.
	SuperadminUsername string
	SuperadminPassword string

	MaxFileSize int64

	// Items in trash are advertised to purge this long after deletion.
	TrashRetention time.Duration

	// Shallow-by-default behaviors. Flipping these turns on the deep
	// (recursive) variants without code changes.
	RecursiveDeleteEnabled bool
	RecursiveSizeEnabled   bool

	// What to do with a corrupt nested archive during ingestion:
	// "store" keeps it as an opaque file, "skip" drops the entry.
	ArchiveCorruptFallback string

	AllowedOrigins []string
}

var AppConfig *Config

func LoadConfig() {
	AppConfig = &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBType:     getEnv("DB_TYPE", "sqlite"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "drivebox.db"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),

		StoragePath: getEnv("STORAGE_PATH", "./uploads"),

		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		JWTExpiration: parseDuration(getEnv("JWT_EXPIRATION", "24h")),
		JWTIssuer:     getEnv("JWT_ISSUER", "drivebox"),

		SuperadminUsername: getEnv("SUPERADMIN_USERNAME", "superadmin"),
		SuperadminPassword: getEnv("SUPERADMIN_PASSWORD", ""),

		MaxFileSize: parseInt64(getEnv("MAX_FILE_SIZE", "104857600")),

		TrashRetention: parseDuration(getEnv("TRASH_RETENTION", "720h")),

		RecursiveDeleteEnabled: parseBool(getEnv("RECURSIVE_DELETE", "false")),
		RecursiveSizeEnabled:   parseBool(getEnv("RECURSIVE_SIZE", "false")),

		ArchiveCorruptFallback: getEnv("ARCHIVE_CORRUPT_FALLBACK", "store"),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	logConfig()
	validateConfig()
}

func logConfig() {
	log.Println("Configuration loaded:")
	log.Printf("  Port: %s", AppConfig.Port)
	log.Printf("  Environment: %s", AppConfig.Env)
	log.Printf("  Database type: %s", AppConfig.DBType)
	log.Printf("  Database name: %s", AppConfig.DBName)
	log.Printf("  Storage path: %s", AppConfig.StoragePath)
	log.Printf("  JWT Secret: %s", maskSecret(AppConfig.JWTSecret))
	log.Printf("  JWT Expiration: %v", AppConfig.JWTExpiration)
	log.Printf("  Max File Size: %d bytes", AppConfig.MaxFileSize)
	log.Printf("  Trash Retention: %v", AppConfig.TrashRetention)
	log.Printf("  Recursive Delete: %t", AppConfig.RecursiveDeleteEnabled)
	log.Printf("  Recursive Size: %t", AppConfig.RecursiveSizeEnabled)
	log.Printf("  Archive Corrupt Fallback: %s", AppConfig.ArchiveCorruptFallback)
	log.Printf("  Allowed Origins: %v", AppConfig.AllowedOrigins)
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[NOT SET]"
	}
	if len(secret) <= 8 {
		return "[HIDDEN]"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

func validateConfig() {
	var missingVars []string

	required := map[string]string{
		"JWT_SECRET":   AppConfig.JWTSecret,
		"STORAGE_PATH": AppConfig.StoragePath,
		"DB_NAME":      AppConfig.DBName,
	}

	for key, value := range required {
		if value == "" {
			missingVars = append(missingVars, key)
		}
	}

	if AppConfig.DBType == "postgres" {
		if AppConfig.DBUser == "" {
			missingVars = append(missingVars, "DB_USER")
		}
		if AppConfig.DBPassword == "" {
			missingVars = append(missingVars, "DB_PASSWORD")
		}
	}

	switch AppConfig.ArchiveCorruptFallback {
	case "store", "skip":
	default:
		log.Fatalf("ARCHIVE_CORRUPT_FALLBACK must be 'store' or 'skip', got %q", AppConfig.ArchiveCorruptFallback)
	}

	if len(missingVars) > 0 {
		log.Printf("Missing required environment variables: %v", missingVars)
		log.Fatal("Please set all required environment variables")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Fatalf("Failed to parse int64: %s", s)
	}
	return i
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("Failed to parse bool: %s", s)
	}
	return b
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Failed to parse duration: %s", s)
	}
	return d
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	var result []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
