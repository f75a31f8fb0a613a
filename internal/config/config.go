package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For the poll interval duration

	"github.com/joho/godotenv" // For loading .env files
)

// Default values applied when the environment leaves a knob unset
const (
	DefaultAppPort     = "8080"           // Default HTTP port
	DefaultDataFile    = "user_data.json" // Default totals file path
	DefaultPollSeconds = 5                // Default sync poll interval in seconds
	BackendFile        = "file"           // File-backed totals store
	BackendMySQL       = "mysql"          // MySQL-backed totals store
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DataFile       string        // Path of the JSON totals file (file backend)
	StorageBackend string        // Storage backend: file or mysql
	DBUser         string        // Database user (mysql backend)
	DBPassword     string        // Database password (mysql backend)
	DBHost         string        // Database host (mysql backend)
	DBPort         string        // Database port (mysql backend)
	DBName         string        // Database name (mysql backend)
	JWTSecret      string        // JWT secret key for session tokens
	RedisAddr      string        // Redis server address, empty disables caching
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	PollInterval   time.Duration // Fixed interval at which clients re-read totals
	IsProd         bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	pollSeconds, _ := strconv.Atoi(os.Getenv("POLL_INTERVAL_SECONDS"))
	if pollSeconds <= 0 {
		pollSeconds = DefaultPollSeconds // Fall back to the default interval
	}
	cfg := &Config{
		AppPort:        os.Getenv("APP_PORT"),                    // Application port
		DataFile:       os.Getenv("DATA_FILE"),                   // Totals file path
		StorageBackend: os.Getenv("STORAGE_BACKEND"),             // Storage backend selector
		DBUser:         os.Getenv("DB_USER"),                     // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),                 // Database password
		DBHost:         os.Getenv("DB_HOST"),                     // Database host
		DBPort:         os.Getenv("DB_PORT"),                     // Database port
		DBName:         os.Getenv("DB_NAME"),                     // Database name
		JWTSecret:      os.Getenv("JWT_SECRET"),                  // JWT secret key
		RedisAddr:      os.Getenv("REDIS_ADDR"),                  // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),                  // Redis password
		RedisDB:        redisDB,                                  // Redis database number
		PollInterval:   time.Duration(pollSeconds) * time.Second, // Sync poll interval
		IsProd:         os.Getenv("IS_PROD") == "true",           // Is production environment
	}
	// Apply defaults for the knobs a bare environment leaves empty
	if cfg.AppPort == "" {
		cfg.AppPort = DefaultAppPort
	}
	if cfg.DataFile == "" {
		cfg.DataFile = DefaultDataFile
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendFile
	}
	return cfg
}

// DSN builds the MySQL Data Source Name from the database settings
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}
