// Package config provides centralized configuration management for the inkpad
// application. It loads configuration from CLI flags and environment variables,
// validates required fields, and provides sensible defaults.
//
// CLI flags control which services are mocked (--no-openai, --no-stripe,
// --no-s3, --no-email, --no-oidc, --test). Environment variables provide
// secrets and service configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inkpad/inkpad/internal/ratelimit"
)

const (
	defaultS3Region    = "auto"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr string
	BaseURL    string

	// Database and encryption
	MasterKey       string        // 64 hex characters (32 bytes)
	DatabasePath    string        // Path to the SQLite database file
	SessionDuration time.Duration // How long sessions remain valid

	// Rate limiting
	RateLimitConfig ratelimit.Config       // token-bucket limiter for the general API
	AIWindowConfig  ratelimit.WindowConfig // fixed-window limiter for AI suggestions

	// Mock service flags (controlled by CLI flags, not env vars)
	NoOIDC   bool // If true, use mock OIDC provider (--no-oidc)
	NoEmail  bool // If true, use mock email service (--no-email)
	NoS3     bool // If true, use in-memory S3 (--no-s3)
	NoOpenAI bool // If true, use canned AI suggestions (--no-openai)
	NoStripe bool // If true, use mock billing (--no-stripe)

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	// Google OIDC
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Resend Email
	ResendAPIKey    string
	ResendFromEmail string

	// S3 Storage (uses AWS_ env vars)
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
	AWSBucketName      string // BUCKET_NAME
	AWSPublicURL       string // S3_PUBLIC_URL (optional CDN/custom domain)
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Flags holds parsed CLI flag values. Pass to LoadConfig.
type Flags struct {
	NoEmail  bool
	NoS3     bool
	NoOIDC   bool
	NoOpenAI bool
	NoStripe bool
	Addr     string
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
func ParseFlags() Flags {
	var f Flags
	var testMode bool
	flag.BoolVar(&f.NoEmail, "no-email", false, "Use mock email service (logs emails to console)")
	flag.BoolVar(&f.NoS3, "no-s3", false, "Use mock S3 storage (in-memory)")
	flag.BoolVar(&f.NoOIDC, "no-oidc", false, "Use mock Google OIDC provider")
	flag.BoolVar(&f.NoOpenAI, "no-openai", false, "Use canned AI suggestions instead of OpenAI")
	flag.BoolVar(&f.NoStripe, "no-stripe", false, "Use mock billing instead of Stripe")
	flag.BoolVar(&testMode, "test", false, "Shorthand for --no-email --no-s3 --no-oidc --no-openai --no-stripe")
	flag.StringVar(&f.Addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()

	if testMode {
		f.NoEmail = true
		f.NoS3 = true
		f.NoOIDC = true
		f.NoOpenAI = true
		f.NoStripe = true
	}

	return f
}

// LoadConfig loads configuration from environment variables and CLI flag values.
// The No* flags control which services use mocks. The Addr flag overrides the
// LISTEN_ADDR env var if non-empty.
func LoadConfig(flags Flags) (*Config, error) {
	cfg := &Config{}

	// CLI flag values
	cfg.NoEmail = flags.NoEmail
	cfg.NoS3 = flags.NoS3
	cfg.NoOIDC = flags.NoOIDC
	cfg.NoOpenAI = flags.NoOpenAI
	cfg.NoStripe = flags.NoStripe

	// Server settings
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if flags.Addr != "" {
		cfg.ListenAddr = flags.Addr
	}
	cfg.BaseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost" + cfg.ListenAddr
	}

	// Database and encryption
	cfg.MasterKey = os.Getenv("MASTER_KEY")
	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "/data/inkpad.db")
	cfg.SessionDuration = parseDurationOrDefault("SESSION_DURATION", 30*24*time.Hour)

	// Rate limiting
	cfg.RateLimitConfig = ratelimit.Config{
		FreeRPS:         parseFloat64OrDefault("RATE_LIMIT_FREE_RPS", 10),
		FreeBurst:       parseIntOrDefault("RATE_LIMIT_FREE_BURST", 20),
		PaidRPS:         parseFloat64OrDefault("RATE_LIMIT_PAID_RPS", 100),
		PaidBurst:       parseIntOrDefault("RATE_LIMIT_PAID_BURST", 200),
		CleanupInterval: parseDurationOrDefault("RATE_LIMIT_CLEANUP_INTERVAL", time.Hour),
	}
	cfg.AIWindowConfig = ratelimit.WindowConfig{
		Limit:           parseIntOrDefault("AI_RATE_LIMIT", 5),
		Window:          parseDurationOrDefault("AI_RATE_WINDOW", time.Minute),
		CleanupInterval: parseDurationOrDefault("AI_RATE_CLEANUP_INTERVAL", 5*time.Minute),
	}

	// OpenAI
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", defaultOpenAIModel)

	// Stripe
	cfg.StripeSecretKey = strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	cfg.StripeWebhookSecret = strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET"))
	cfg.StripePriceID = strings.TrimSpace(os.Getenv("STRIPE_PRICE_ID"))

	// Google OIDC
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	if cfg.GoogleRedirectURL == "" && cfg.GoogleClientID != "" {
		cfg.GoogleRedirectURL = cfg.BaseURL + "/auth/google/callback"
	}

	// Resend Email
	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.ResendFromEmail = getEnvOrDefault("RESEND_FROM_EMAIL", "noreply@inkpad.app")

	// S3 Storage
	cfg.AWSEndpointS3 = strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL_S3"))
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", defaultS3Region)
	cfg.AWSAccessKeyID = strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	cfg.AWSSecretAccessKey = strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	cfg.AWSBucketName = strings.TrimSpace(os.Getenv("BUCKET_NAME"))
	cfg.AWSPublicURL = strings.TrimSpace(os.Getenv("S3_PUBLIC_URL"))
	if cfg.AWSPublicURL == "" && cfg.AWSEndpointS3 != "" && cfg.AWSBucketName != "" {
		cfg.AWSPublicURL = strings.TrimRight(cfg.AWSEndpointS3, "/") + "/" + cfg.AWSBucketName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
// When mocks are NOT active for a service, the corresponding secrets are required.
func (c *Config) Validate() error {
	var errs []string

	// OIDC: require Google credentials unless --no-oidc
	if !c.NoOIDC {
		if c.GoogleClientID == "" {
			errs = append(errs, "GOOGLE_CLIENT_ID is required (set env var or use --no-oidc)")
		}
		if c.GoogleClientSecret == "" {
			errs = append(errs, "GOOGLE_CLIENT_SECRET is required (set env var or use --no-oidc)")
		}
	}

	// OpenAI: require API key unless --no-openai
	if !c.NoOpenAI {
		if c.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required (set env var or use --no-openai)")
		}
	}

	// Stripe: require secrets unless --no-stripe
	if !c.NoStripe {
		if c.StripeSecretKey == "" {
			errs = append(errs, "STRIPE_SECRET_KEY is required (set env var or use --no-stripe)")
		}
		if c.StripeWebhookSecret == "" {
			errs = append(errs, "STRIPE_WEBHOOK_SECRET is required (set env var or use --no-stripe)")
		}
		if c.StripePriceID == "" {
			errs = append(errs, "STRIPE_PRICE_ID is required (set env var or use --no-stripe)")
		}
	}

	// Email: require Resend API key unless --no-email
	if !c.NoEmail {
		if c.ResendAPIKey == "" {
			errs = append(errs, "RESEND_API_KEY is required (set env var or use --no-email)")
		}
	}

	// S3: require AWS credentials unless --no-s3
	if !c.NoS3 {
		if c.AWSEndpointS3 == "" {
			errs = append(errs, "AWS_ENDPOINT_URL_S3 is required (set env var or use --no-s3)")
		}
		if c.AWSBucketName == "" {
			errs = append(errs, "BUCKET_NAME is required (set env var or use --no-s3)")
		}
		if c.AWSAccessKeyID == "" {
			errs = append(errs, "AWS_ACCESS_KEY_ID is required (set env var or use --no-s3)")
		}
		if c.AWSSecretAccessKey == "" {
			errs = append(errs, "AWS_SECRET_ACCESS_KEY is required (set env var or use --no-s3)")
		}
	}

	// MasterKey: always required (losing it = database unreadable)
	if c.MasterKey == "" {
		errs = append(errs, "MASTER_KEY is required (generate with: openssl rand -hex 32)")
	} else if len(c.MasterKey) != 64 {
		errs = append(errs, "MASTER_KEY must be 64 hex characters (32 bytes)")
	}

	// Validate rate limit config
	if c.RateLimitConfig.FreeRPS <= 0 {
		errs = append(errs, "RATE_LIMIT_FREE_RPS must be positive")
	}
	if c.RateLimitConfig.FreeBurst <= 0 {
		errs = append(errs, "RATE_LIMIT_FREE_BURST must be positive")
	}
	if c.AIWindowConfig.Limit <= 0 {
		errs = append(errs, "AI_RATE_LIMIT must be positive")
	}
	if c.AIWindowConfig.Window <= 0 {
		errs = append(errs, "AI_RATE_WINDOW must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// IsProduction returns true if all mock services are disabled.
func (c *Config) IsProduction() bool {
	return !c.NoOIDC && !c.NoEmail && !c.NoS3 && !c.NoOpenAI && !c.NoStripe
}

// IsDevelopment returns true if any mock services are enabled.
func (c *Config) IsDevelopment() bool {
	return c.NoOIDC || c.NoEmail || c.NoS3 || c.NoOpenAI || c.NoStripe
}

// RequireSecureCookies returns true if secure cookies should be required.
// Returns false for localhost development URLs.
func (c *Config) RequireSecureCookies() bool {
	return !strings.HasPrefix(c.BaseURL, "http://localhost") &&
		!strings.HasPrefix(c.BaseURL, "http://127.0.0.1")
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "inkpad server starting...")

	if c.NoOIDC {
		fmt.Fprintln(os.Stderr, "  Auth:    Mock OIDC (--no-oidc)")
	} else {
		fmt.Fprintln(os.Stderr, "  Auth:    Google OIDC (real)")
	}

	if c.NoOpenAI {
		fmt.Fprintln(os.Stderr, "  AI:      Canned suggestions (--no-openai)")
	} else {
		fmt.Fprintf(os.Stderr, "  AI:      OpenAI (real, model: %s)\n", c.OpenAIModel)
	}

	if c.NoStripe {
		fmt.Fprintln(os.Stderr, "  Billing: Mock (--no-stripe)")
	} else {
		fmt.Fprintln(os.Stderr, "  Billing: Stripe (real)")
	}

	if c.NoEmail {
		fmt.Fprintln(os.Stderr, "  Email:   Mock (--no-email)")
	} else {
		fmt.Fprintf(os.Stderr, "  Email:   Resend (real, from: %s)\n", c.ResendFromEmail)
	}

	if c.NoS3 {
		fmt.Fprintln(os.Stderr, "  Storage: Mock S3 (--no-s3)")
	} else {
		fmt.Fprintf(os.Stderr, "  Storage: S3 (real, endpoint: %s)\n", c.AWSEndpointS3)
	}

	fmt.Fprintf(os.Stderr, "  DB:      %s\n", c.DatabasePath)
	fmt.Fprintf(os.Stderr, "  Listen:  %s\n", c.ListenAddr)
	fmt.Fprintf(os.Stderr, "  Base:    %s\n", c.BaseURL)
	fmt.Fprintln(os.Stderr, "")
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails.
// Use this in main() when you want the application to fail fast on bad config.
func MustLoadConfig(flags Flags) *Config {
	cfg, err := LoadConfig(flags)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
