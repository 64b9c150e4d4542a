package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisIdemDB      int    `mapstructure:"REDIS_IDEM_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Booking engine settings.
	BookingWindowWeeks      int `mapstructure:"BOOKING_WINDOW_WEEKS"`       // how far ahead availability is published
	DefaultStepMin          int `mapstructure:"DEFAULT_STEP_MIN"`           // slot grid granularity when the client sends none
	CancelCutoffHours       int `mapstructure:"CANCEL_CUTOFF_HOURS"`        // cancellations rejected inside this window before start
	PendingHoldMin          int `mapstructure:"PENDING_HOLD_MIN"`           // unconfirmed pending sessions auto-release after this
	IdempotencyTTLHours     int `mapstructure:"IDEMPOTENCY_TTL_HOURS"`      // retention window for idempotency records
	AvailabilityCacheTTLSec int `mapstructure:"AVAILABILITY_CACHE_TTL_SEC"` // read-through availability cache TTL
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_IDEM_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "calmora")
	viper.SetDefault("BOOKING_WINDOW_WEEKS", 6)
	viper.SetDefault("DEFAULT_STEP_MIN", 30)
	viper.SetDefault("CANCEL_CUTOFF_HOURS", 24)
	viper.SetDefault("PENDING_HOLD_MIN", 30)
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("AVAILABILITY_CACHE_TTL_SEC", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
