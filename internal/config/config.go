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

// Submission modes.
const (
	SubmitModeSimulated = "simulated"
	SubmitModeVTpass    = "vtpass"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	DB         DatabaseConfig
	Redis      RedisConfig
	Limits     LimitsConfig
	Catalog    CatalogConfig
	Submission SubmissionConfig
	VTpass     VTpassConfig
	Session    SessionConfig
	Worker     WorkerConfig
	RateLimit  RateLimitConfig
	Deposit    DepositConfig
	CORS       CORSConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
// Order history is disabled when Host is empty.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig contains Redis connection parameters.
// Sessions are kept in memory when Host is empty.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether Redis is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// LimitsConfig holds free-form amount bounds per service, in whole Naira.
type LimitsConfig struct {
	AirtimeMin int
	AirtimeMax int
	WalletMin  int
	WalletMax  int
}

// CatalogConfig points at an external catalog file. Empty Path uses the embedded catalog.
type CatalogConfig struct {
	Path string
}

// SubmissionConfig controls the external submission boundary.
type SubmissionConfig struct {
	Mode       string
	Delay      time.Duration
	Timeout    time.Duration
	MaxRetries int
}

// VTpassConfig contains credentials for the VTpass VTU API.
type VTpassConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	PublicKey string
}

// SessionConfig controls form session lifetime.
type SessionConfig struct {
	TTL     time.Duration
	LockTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	CatalogReloadInterval time.Duration
}

// RateLimitConfig limits submit attempts per client IP.
type RateLimitConfig struct {
	SubmitPerMinute int
	SubmitBurst     int
}

// DepositConfig is the collection account shown for bank deposits.
type DepositConfig struct {
	AccountNumber string
	AccountName   string
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

const defaultCORSOrigins = "localhost:3000,127.0.0.1:3000,localhost:5173,app.trustpay.ng,trustpay.ng,www.trustpay.ng"

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Amount bounds
	cfg.Limits = LimitsConfig{
		AirtimeMin: getEnvInt("AIRTIME_MIN_AMOUNT", 50),
		AirtimeMax: getEnvInt("AIRTIME_MAX_AMOUNT", 50000),
		WalletMin:  getEnvInt("WALLET_MIN_AMOUNT", 100),
		WalletMax:  getEnvInt("WALLET_MAX_AMOUNT", 1000000),
	}

	cfg.Catalog = CatalogConfig{
		Path: getEnv("CATALOG_PATH", ""),
	}

	cfg.VTpass = VTpassConfig{
		BaseURL:   getEnv("VTPASS_BASE_URL", "https://sandbox.vtpass.com/api"),
		APIKey:    getEnv("VTPASS_API_KEY", ""),
		SecretKey: getEnv("VTPASS_SECRET_KEY", ""),
		PublicKey: getEnv("VTPASS_PUBLIC_KEY", ""),
	}

	cfg.RateLimit = RateLimitConfig{
		SubmitPerMinute: getEnvInt("SUBMIT_RATE_PER_MINUTE", 10),
		SubmitBurst:     getEnvInt("SUBMIT_BURST", 3),
	}

	cfg.Deposit = DepositConfig{
		AccountNumber: getEnv("DEPOSIT_ACCOUNT_NUMBER", "1023456789"),
		AccountName:   getEnv("DEPOSIT_ACCOUNT_NAME", "TRUSTPAY SERVICES LTD"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins)),
	}

	// Submission
	cfg.Submission.Mode = getEnv("SUBMIT_MODE", SubmitModeSimulated)
	cfg.Submission.MaxRetries = getEnvInt("SUBMIT_MAX_RETRIES", 2)

	// Durations
	var err error
	if cfg.Submission.Delay, err = parseDurationEnv("SUBMIT_DELAY", "1500ms"); err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_DELAY: %w", err)
	}
	if cfg.Submission.Timeout, err = parseDurationEnv("SUBMIT_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_TIMEOUT: %w", err)
	}
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Session.LockTTL, err = parseDurationEnv("SUBMIT_LOCK_TTL", "2m"); err != nil {
		return nil, fmt.Errorf("invalid SUBMIT_LOCK_TTL: %w", err)
	}
	if cfg.Worker.CatalogReloadInterval, err = parseDurationEnv("CATALOG_RELOAD_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_RELOAD_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	if c.Limits.AirtimeMin <= 0 || c.Limits.AirtimeMin > c.Limits.AirtimeMax {
		return errors.New("airtime limits invalid: ensure 0 < AIRTIME_MIN_AMOUNT <= AIRTIME_MAX_AMOUNT")
	}
	if c.Limits.WalletMin <= 0 || c.Limits.WalletMin > c.Limits.WalletMax {
		return errors.New("wallet limits invalid: ensure 0 < WALLET_MIN_AMOUNT <= WALLET_MAX_AMOUNT")
	}

	switch c.Submission.Mode {
	case SubmitModeSimulated:
	case SubmitModeVTpass:
		if c.VTpass.APIKey == "" || c.VTpass.SecretKey == "" {
			return errors.New("SUBMIT_MODE=vtpass requires VTPASS_API_KEY and VTPASS_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown SUBMIT_MODE %q: use %q or %q", c.Submission.Mode, SubmitModeSimulated, SubmitModeVTpass)
	}
	if c.Submission.MaxRetries < 0 {
		return errors.New("SUBMIT_MAX_RETRIES must be >= 0")
	}
	// a submission must finish before its lock can expire
	if c.Session.LockTTL <= c.Submission.Timeout+c.Submission.Delay {
		return fmt.Errorf("SUBMIT_LOCK_TTL (%s) must exceed SUBMIT_TIMEOUT + SUBMIT_DELAY (%s)",
			c.Session.LockTTL, c.Submission.Timeout+c.Submission.Delay)
	}

	if c.DB.Enabled() && (c.DB.User == "" || c.DB.Name == "") {
		return errors.New("database configuration incomplete: ensure DB_USER and DB_NAME are set with DB_HOST")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
