package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/jafarshop/restaurant/internal/domain"
)

type Config struct {
	Port          string
	Environment   string
	StorageDriver string
	Database      DatabaseConfig
	Cart          CartConfig
	Admin         AdminConfig
	LogLevel      string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CartConfig is the fee schedule and tax rate every new cart starts with.
// Amounts are minor currency units.
type CartConfig struct {
	DeliveryFee           int64
	PackagingFee          int64
	ServiceFee            int64
	TaxRate               int64
	DefaultDeliveryMethod domain.DeliveryMethod
	CurrencySymbol        string

	// SessionTTL drops carts idle for longer; MaxSessions caps live carts
	SessionTTL  time.Duration
	MaxSessions int
}

type AdminConfig struct {
	APIKeyHash string
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("STORAGE_DRIVER", StorageMemory)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CART_DELIVERY_FEE", "5000")
	viper.SetDefault("CART_PACKAGING_FEE", "1500")
	viper.SetDefault("CART_SERVICE_FEE", "0")
	viper.SetDefault("CART_TAX_RATE", "13")
	viper.SetDefault("CART_DEFAULT_DELIVERY_METHOD", string(domain.DeliveryMethodPickup))
	viper.SetDefault("CURRENCY_SYMBOL", "Rs.")
	viper.SetDefault("CART_SESSION_TTL", "2h")
	viper.SetDefault("CART_MAX_SESSIONS", "100000")

	// Read from environment variables
	viper.AutomaticEnv()

	// .env is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cart, err := loadCartConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:          getEnvOrViper("PORT", "8080"),
		Environment:   getEnvOrViper("ENVIRONMENT", "development"),
		StorageDriver: getEnvOrViper("STORAGE_DRIVER", StorageMemory),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", ""),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "restaurant"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Cart: cart,
		Admin: AdminConfig{
			APIKeyHash: getEnvOrViper("ADMIN_API_KEY_HASH", ""),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks fields that have no safe default
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMemory, StoragePostgres, c.StorageDriver)
	}
	if !c.Cart.DefaultDeliveryMethod.IsValid() {
		return fmt.Errorf("CART_DEFAULT_DELIVERY_METHOD must be pickup or delivery, got %q", c.Cart.DefaultDeliveryMethod)
	}
	return nil
}

func loadCartConfig() (CartConfig, error) {
	cart := CartConfig{
		DefaultDeliveryMethod: domain.DeliveryMethod(getEnvOrViper("CART_DEFAULT_DELIVERY_METHOD", string(domain.DeliveryMethodPickup))),
		CurrencySymbol:        getEnvOrViper("CURRENCY_SYMBOL", "Rs."),
	}

	ints := []struct {
		key string
		def string
		dst *int64
	}{
		{"CART_DELIVERY_FEE", "5000", &cart.DeliveryFee},
		{"CART_PACKAGING_FEE", "1500", &cart.PackagingFee},
		{"CART_SERVICE_FEE", "0", &cart.ServiceFee},
		{"CART_TAX_RATE", "13", &cart.TaxRate},
	}
	for _, f := range ints {
		v, err := getInt64(f.key, f.def)
		if err != nil {
			return CartConfig{}, err
		}
		*f.dst = v
	}

	ttl, err := time.ParseDuration(getEnvOrViper("CART_SESSION_TTL", "2h"))
	if err != nil || ttl < 0 {
		return CartConfig{}, fmt.Errorf("CART_SESSION_TTL must be a non-negative duration such as 90m: %v", err)
	}
	cart.SessionTTL = ttl

	maxSessions, err := getInt64("CART_MAX_SESSIONS", "100000")
	if err != nil {
		return CartConfig{}, err
	}
	if maxSessions < 0 {
		return CartConfig{}, fmt.Errorf("CART_MAX_SESSIONS must not be negative")
	}
	cart.MaxSessions = int(maxSessions)

	return cart, nil
}

func getInt64(key, defaultValue string) (int64, error) {
	raw := getEnvOrViper(key, defaultValue)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer amount in minor units: %w", key, err)
	}
	return v, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
