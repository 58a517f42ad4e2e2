package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	RabbitMQURL        string
	UploadDir          string
	CORSAllowedOrigins []string

	// Gamification and payout policy
	DeliveryCommissionRate decimal.Decimal
	PointsPerOrder         int
	PointsPerLevel         int
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	commission, err := decimal.NewFromString(getEnv("DELIVERY_COMMISSION_RATE", "0.10"))
	if err != nil {
		return nil, fmt.Errorf("DELIVERY_COMMISSION_RATE must be a decimal: %w", err)
	}

	pointsPerOrder, err := getEnvInt("POINTS_PER_ORDER", 10)
	if err != nil {
		return nil, err
	}

	pointsPerLevel, err := getEnvInt("POINTS_PER_LEVEL", 100)
	if err != nil {
		return nil, err
	}

	config := &Config{
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		Port:                   getEnv("PORT", "8080"),
		GoEnv:                  getEnv("GO_ENV", "development"),
		Auth0Domain:            getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:          getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:            getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:         getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		RabbitMQURL:            getEnv("RABBITMQ_URL", ""),
		UploadDir:              getEnv("UPLOAD_DIR", "./uploads"),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		DeliveryCommissionRate: commission,
		PointsPerOrder:         pointsPerOrder,
		PointsPerLevel:         pointsPerLevel,
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	current = config
	return config, nil
}

// GetConfig returns the most recently loaded configuration, or nil if Load was never called
func GetConfig() *Config {
	return current
}

// SetConfig replaces the current configuration (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DeliveryCommissionRate.IsNegative() || c.DeliveryCommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("DELIVERY_COMMISSION_RATE must be between 0 and 1")
	}
	if c.PointsPerOrder < 0 {
		return fmt.Errorf("POINTS_PER_ORDER must not be negative")
	}
	if c.PointsPerLevel <= 0 {
		return fmt.Errorf("POINTS_PER_LEVEL must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// UsesS3 reports whether dish photos should be stored in S3 rather than on local disk
func (c *Config) UsesS3() bool {
	return c.AWSS3Bucket != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// getEnvList splits a comma separated variable, dropping blank entries
func getEnvList(key, defaultValue string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
