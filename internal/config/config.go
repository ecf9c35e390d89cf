package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Detection DetectionConfig
	Providers ProvidersConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Environment     string
}

// DatabaseConfig contains SQLite configuration
type DatabaseConfig struct {
	Path string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// DetectionConfig contains detection pipeline tuning
type DetectionConfig struct {
	Sensitivity    float64
	Window         int
	TrendThreshold float64
	Seed           int64
	RescanInterval time.Duration
}

// ProvidersConfig contains cloud billing credentials. Empty credential
// sets disable the corresponding provider's API loader.
type ProvidersConfig struct {
	AWS   AWSConfig
	Azure AzureConfig
	GCP   GCPConfig
}

// AWSConfig contains AWS Cost Explorer credentials
type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// AzureConfig contains Azure Cost Management credentials
type AzureConfig struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
}

// GCPConfig contains GCP billing export credentials
type GCPConfig struct {
	ProjectID          string
	ServiceAccountJSON string
	BillingDataset     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("COSTWATCH_SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("COSTWATCH_SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("COSTWATCH_SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("COSTWATCH_SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("COSTWATCH_SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			Environment:     getEnv("COSTWATCH_ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("COSTWATCH_DB_PATH", "./costwatch.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("COSTWATCH_LOG_LEVEL", "info"),
			Format: getEnv("COSTWATCH_LOG_FORMAT", "json"),
		},
		Detection: DetectionConfig{
			Sensitivity:    getEnvAsFloat("COSTWATCH_SENSITIVITY", 0.1),
			Window:         getEnvAsInt("COSTWATCH_WINDOW", 30),
			TrendThreshold: getEnvAsFloat("COSTWATCH_TREND_THRESHOLD", 20.0),
			Seed:           int64(getEnvAsInt("COSTWATCH_SEED", 42)),
			RescanInterval: getEnvAsDuration("COSTWATCH_RESCAN_INTERVAL", time.Hour),
		},
		Providers: ProvidersConfig{
			AWS: AWSConfig{
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Region:          getEnv("AWS_REGION", "us-east-1"),
			},
			Azure: AzureConfig{
				TenantID:       getEnv("AZURE_TENANT_ID", ""),
				ClientID:       getEnv("AZURE_CLIENT_ID", ""),
				ClientSecret:   getEnv("AZURE_CLIENT_SECRET", ""),
				SubscriptionID: getEnv("AZURE_SUBSCRIPTION_ID", ""),
			},
			GCP: GCPConfig{
				ProjectID:          getEnv("GCP_PROJECT_ID", ""),
				ServiceAccountJSON: getEnv("GCP_SERVICE_ACCOUNT_JSON", ""),
				BillingDataset:     getEnv("GCP_BILLING_DATASET", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Detection.Sensitivity <= 0 || c.Detection.Sensitivity >= 1 {
		return fmt.Errorf("sensitivity must be in (0, 1), got %v", c.Detection.Sensitivity)
	}

	if c.Detection.Window < 3 {
		return fmt.Errorf("statistical window must be at least 3 days, got %d", c.Detection.Window)
	}

	if c.Detection.TrendThreshold <= 0 {
		return fmt.Errorf("trend threshold must be positive, got %v", c.Detection.TrendThreshold)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
