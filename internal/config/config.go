package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	Server       ServerConfig
	CORS         CORSConfig
	Pricing      PricingConfig
	Dispatch     DispatchConfig
	Payment      PaymentConfig
	Notification NotificationConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Log          LogConfig
	Admin        AdminConfig
}

type DatabaseConfig struct {
	Driver     string // mysql or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	Database   string
	SQLitePath string
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// PricingConfig holds per-tier price (minor currency units) and hospital fan-out width.
// Index 0 is tier 1.
type PricingConfig struct {
	TierPrices    [3]int64
	TierHospitals [3]int
}

type DispatchConfig struct {
	RadiusKm       float64
	SendTimeout    time.Duration
	Concurrency    int
	ClaimTTL       time.Duration
	ReaperInterval time.Duration
}

type PaymentConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
	BaseURL   string
	Timeout   time.Duration
}

type NotificationConfig struct {
	FCMServerKey string
	FCMEndpoint  string
	Timeout      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type LogConfig struct {
	Level string
	File  string
}

// AdminConfig seeds one admin account at startup when both fields are set
type AdminConfig struct {
	Email    string
	Password string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "mysql"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "3306"),
			User:       getEnv("DB_USER", "root"),
			Password:   getEnv("DB_PASSWORD", ""),
			Database:   getEnv("DB_NAME", "cardioalert"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "data/cardioalert.db"),
		},
		JWT: JWTConfig{
			AccessSecret:       getEnv("JWT_ACCESS_SECRET", "cardioalert-dev-access-secret"),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", "cardioalert-dev-refresh-secret"),
			AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "3000"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Pricing: PricingConfig{
			TierPrices: [3]int64{
				parseInt64(getEnv("ALERT_TIER_1_PRICE", "100"), 100),
				parseInt64(getEnv("ALERT_TIER_2_PRICE", "200"), 200),
				parseInt64(getEnv("ALERT_TIER_3_PRICE", "300"), 300),
			},
			TierHospitals: [3]int{
				parseInt(getEnv("ALERT_TIER_1_HOSPITALS", "1"), 1),
				parseInt(getEnv("ALERT_TIER_2_HOSPITALS", "3"), 3),
				parseInt(getEnv("ALERT_TIER_3_HOSPITALS", "10"), 10),
			},
		},
		Dispatch: DispatchConfig{
			RadiusKm:       parseFloat(getEnv("DISPATCH_RADIUS_KM", "15"), 15),
			SendTimeout:    parseDuration(getEnv("DISPATCH_SEND_TIMEOUT", "10s"), 10*time.Second),
			Concurrency:    parseInt(getEnv("DISPATCH_CONCURRENCY", "4"), 4),
			ClaimTTL:       parseDuration(getEnv("DISPATCH_CLAIM_TTL", "10m"), 10*time.Minute),
			ReaperInterval: parseDuration(getEnv("DISPATCH_REAPER_INTERVAL", "1m"), time.Minute),
		},
		Payment: PaymentConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			Currency:  getEnv("PAYMENT_CURRENCY", "INR"),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			Timeout:   parseDuration(getEnv("PAYMENT_TIMEOUT", "15s"), 15*time.Second),
		},
		Notification: NotificationConfig{
			FCMServerKey: getEnv("FCM_SERVER_KEY", ""),
			FCMEndpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			Timeout:      parseDuration(getEnv("FCM_TIMEOUT", "10s"), 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: parseFloat(getEnv("RATE_LIMIT_RPS", "5"), 5),
			Burst:             parseInt(getEnv("RATE_LIMIT_BURST", "10"), 10),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	return config
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.Database.Driver))
	}

	for i, price := range c.Pricing.TierPrices {
		if price <= 0 {
			errs = append(errs, fmt.Errorf("ALERT_TIER_%d_PRICE must be positive, got %d", i+1, price))
		}
		if i > 0 && price <= c.Pricing.TierPrices[i-1] {
			errs = append(errs, fmt.Errorf("ALERT_TIER_%d_PRICE must be greater than tier %d's, got %d", i+1, i, price))
		}
	}
	for i, count := range c.Pricing.TierHospitals {
		if count <= 0 {
			errs = append(errs, fmt.Errorf("ALERT_TIER_%d_HOSPITALS must be positive, got %d", i+1, count))
		}
		if i > 0 && count < c.Pricing.TierHospitals[i-1] {
			errs = append(errs, fmt.Errorf("ALERT_TIER_%d_HOSPITALS must not be below tier %d's, got %d", i+1, i, count))
		}
	}

	if c.Dispatch.RadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_RADIUS_KM must be positive, got %v", c.Dispatch.RadiusKm))
	}
	if c.Dispatch.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_SEND_TIMEOUT must be positive, got %s", c.Dispatch.SendTimeout))
	}
	if c.Dispatch.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_CONCURRENCY must be positive, got %d", c.Dispatch.Concurrency))
	}
	if c.Dispatch.ClaimTTL <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_CLAIM_TTL must be positive, got %s", c.Dispatch.ClaimTTL))
	}
	if c.Dispatch.ReaperInterval <= 0 {
		errs = append(errs, fmt.Errorf("DISPATCH_REAPER_INTERVAL must be positive, got %s", c.Dispatch.ReaperInterval))
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	if (c.Payment.KeyID == "") != (c.Payment.KeySecret == "") {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together"))
	}

	return errors.Join(errs...)
}

// PaymentLive reports whether real processor credentials are present
func (c *Config) PaymentLive() bool {
	return c.Payment.KeyID != "" && c.Payment.KeySecret != ""
}

// NotificationLive reports whether a real FCM credential is present
func (c *Config) NotificationLive() bool {
	return c.Notification.FCMServerKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, def time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return def
	}
	return duration
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		fmt.Printf("Warning: Invalid integer '%s', using default\n", s)
		return def
	}
	return v
}

func parseInt64(s string, def int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		fmt.Printf("Warning: Invalid integer '%s', using default\n", s)
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		fmt.Printf("Warning: Invalid number '%s', using default\n", s)
		return def
	}
	return v
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
