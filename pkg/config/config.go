package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PURCHASING_DB_DSN"
	EnvDBHost = "PURCHASING_DB_HOST"
	EnvDBUser = "PURCHASING_DB_USER"
	EnvDBName = "PURCHASING_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Pricing      PricingConfig
	Notifier     NotifierConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PURCHASING_APP_ENV" required:"true"`
	Port         string `envconfig:"PURCHASING_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PURCHASING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PURCHASING_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PURCHASING_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PURCHASING_DB_DSN"`
	Driver string `envconfig:"PURCHASING_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PURCHASING_DB_HOST"`
	LegacyPort     int    `envconfig:"PURCHASING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PURCHASING_DB_USER"`
	LegacyPassword string `envconfig:"PURCHASING_DB_PASSWORD"`
	LegacyName     string `envconfig:"PURCHASING_DB_NAME"`
	LegacySSLMode  string `envconfig:"PURCHASING_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PURCHASING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PURCHASING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PURCHASING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PURCHASING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PURCHASING_REDIS_URL"`
	Address      string        `envconfig:"PURCHASING_REDIS_ADDR"`
	Password     string        `envconfig:"PURCHASING_REDIS_PASSWORD"`
	DB           int           `envconfig:"PURCHASING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PURCHASING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PURCHASING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PURCHASING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PURCHASING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PURCHASING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PURCHASING_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PURCHASING_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PURCHASING_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PricingConfig externalizes the order totals policy. Rates and thresholds
// are decimal strings so the policy never flows through binary floats.
type PricingConfig struct {
	TaxRate               decimal.Decimal `envconfig:"PURCHASING_TAX_RATE" default:"0.10"`
	ShippingFee           decimal.Decimal `envconfig:"PURCHASING_SHIPPING_FEE" default:"10.00"`
	FreeShippingThreshold decimal.Decimal `envconfig:"PURCHASING_FREE_SHIPPING_THRESHOLD" default:"100.00"`
	OfferPolicy           string          `envconfig:"PURCHASING_OFFER_POLICY" default:"first"`
}

func (p PricingConfig) validate() error {
	if p.TaxRate.IsNegative() {
		return fmt.Errorf("tax rate must be non-negative")
	}
	if p.ShippingFee.IsNegative() || p.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping policy values must be non-negative")
	}
	switch p.OfferPolicy {
	case "first", "cheapest":
		return nil
	}
	return fmt.Errorf("unknown offer policy %q", p.OfferPolicy)
}

type NotifierConfig struct {
	SMTPHost      string `envconfig:"PURCHASING_SMTP_HOST"`
	SMTPPort      int    `envconfig:"PURCHASING_SMTP_PORT" default:"587"`
	SMTPUser      string `envconfig:"PURCHASING_SMTP_USER"`
	SMTPPassword  string `envconfig:"PURCHASING_SMTP_PASSWORD"`
	FromEmail     string `envconfig:"PURCHASING_FROM_EMAIL" default:"orders@purchasing.local"`
	OperatorEmail string `envconfig:"PURCHASING_OPERATOR_EMAIL"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PURCHASING_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PURCHASING_OUTBOX_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PURCHASING_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PURCHASING_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
