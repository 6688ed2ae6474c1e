package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "nischte"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Platform PlatformConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NISCHTE_APP_ENV" required:"true"`
	Port         string `envconfig:"NISCHTE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NISCHTE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NISCHTE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"NISCHTE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NISCHTE_REDIS_ADDR"`
	Password     string        `envconfig:"NISCHTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"NISCHTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NISCHTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NISCHTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NISCHTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NISCHTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NISCHTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"NISCHTE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"NISCHTE_JWT_ISSUER" required:"true"`
}

// PlatformConfig points at the shop-loyalty platform API and its payment gateway surface.
type PlatformConfig struct {
	BaseURL        string        `envconfig:"NISCHTE_PLATFORM_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"NISCHTE_PLATFORM_REQUEST_TIMEOUT" default:"30s"`
}

type CheckoutConfig struct {
	// HandoffTTL bounds how long a payment hand-off stays valid between the
	// gateway redirect out and the callback in.
	HandoffTTL  time.Duration `envconfig:"NISCHTE_CHECKOUT_HANDOFF_TTL" default:"15m"`
	CartTTL     time.Duration `envconfig:"NISCHTE_CHECKOUT_CART_TTL" default:"168h"`
	MaxQuantity int           `envconfig:"NISCHTE_CHECKOUT_MAX_QUANTITY" default:"99"`
}
