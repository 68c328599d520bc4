package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverPostgres  = "postgres"
	StoreDriverFirestore = "firestore"
	StoreDriverMemory    = "memory"

	AuthProviderSupabase = "supabase"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	ServerPort  string   `envconfig:"SERVER_PORT" default:"8080"`
	Environment string   `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// Storage
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	FirebaseProject            string `envconfig:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountPath string `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	FirebaseServiceAccountJSON string `envconfig:"FIREBASE_SERVICE_ACCOUNT_JSON"`

	// Auth
	AuthProvider      string `envconfig:"AUTH_PROVIDER" default:"supabase"`
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`
	SupabaseJWKSURL   string `envconfig:"SUPABASE_JWKS_URL"`
	AdminRole         string `envconfig:"ADMIN_ROLE" default:"admin"`
	// bcrypt hash of the key internal services present in X-Service-Key
	ServiceKeyHash string `envconfig:"SERVICE_KEY_HASH"`

	// Shopify
	ShopifyStoreDomain   string  `envconfig:"SHOPIFY_STORE_DOMAIN"`
	ShopifyAdminToken    string  `envconfig:"SHOPIFY_ADMIN_TOKEN"`
	ShopifyAPIVersion    string  `envconfig:"SHOPIFY_API_VERSION" default:"2024-10"`
	ShopifyRPS           float64 `envconfig:"SHOPIFY_RPS" default:"2"`
	DiscountValidityDays int     `envconfig:"DISCOUNT_VALIDITY_DAYS" default:"30"`
	DiscountCodePrefix   string  `envconfig:"DISCOUNT_CODE_PREFIX" default:"MNKY"`

	// Operations
	IncidentBucket       string        `envconfig:"INCIDENT_BUCKET"`
	LedgerAuditSchedule  string        `envconfig:"LEDGER_AUDIT_SCHEDULE" default:"@every 1h"`
	RedeemRatePerMinute  int           `envconfig:"REDEEM_RATE_PER_MINUTE" default:"6"`
	ShutdownGracePeriod  time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StoreDriverFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when STORE_DRIVER=firestore")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthProviderSupabase:
		if c.SupabaseJWTSecret == "" && c.SupabaseJWKSURL == "" {
			return fmt.Errorf("SUPABASE_JWT_SECRET or SUPABASE_JWKS_URL is required")
		}
	case AuthProviderFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.DiscountValidityDays <= 0 {
		return fmt.Errorf("DISCOUNT_VALIDITY_DAYS must be > 0")
	}
	if c.RedeemRatePerMinute <= 0 {
		return fmt.Errorf("REDEEM_RATE_PER_MINUTE must be > 0")
	}
	return nil
}

// ShopifyEnabled reports whether discount minting has credentials.
func (c *Config) ShopifyEnabled() bool {
	return c.ShopifyStoreDomain != "" && c.ShopifyAdminToken != ""
}

func (c *Config) DiscountValidity() time.Duration {
	return time.Duration(c.DiscountValidityDays) * 24 * time.Hour
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
