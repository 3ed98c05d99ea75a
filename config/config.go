package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds everything read from the environment. Load validates the
// required values up front so a misconfigured process dies at startup
// instead of limping along with defaults.
type Config struct {
	Port          string
	JWTSecret     string
	RedisAddr     string
	FinnhubAPIKey string
	FinnhubURL    string
	AllowedOrigin string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
}

// DB is the global PostgreSQL database connection.
var DB *gorm.DB

// Rdb is the global Redis client.
var Rdb *redis.Client

// Ctx is the context for Redis operations.
var Ctx = context.Background()

// Load reads configuration from the environment. There is deliberately no
// fallback signing secret: a missing JWT_SECRET is a startup failure.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("SERVER_PORT", "5000"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		FinnhubAPIKey: os.Getenv("FINNHUB_API_KEY"),
		FinnhubURL:    getenv("FINNHUB_URL", "https://finnhub.io/api/v1"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "*"),
		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        getenv("DB_PORT", "5432"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.FinnhubAPIKey == "" {
		return nil, fmt.Errorf("FINNHUB_API_KEY is not set")
	}
	if cfg.DBUser == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("DB_USER and DB_NAME must be set")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the PostgreSQL connection.
func InitDB(cfg *Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to the database:", err)
	}
}

// InitRedis initializes the Redis connection.
func InitRedis(cfg *Config) {
	Rdb = redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := Rdb.Ping(Ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
}
