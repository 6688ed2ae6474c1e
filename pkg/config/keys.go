package config

// Environment variable names, kept alongside the envconfig tags so tests and
// deploy manifests reference a single source.
const (
	EnvAppEnv       = "NISCHTE_APP_ENV"
	EnvPort         = "NISCHTE_APP_PORT"
	EnvLogLevel     = "NISCHTE_LOG_LEVEL"
	EnvRedisURL     = "NISCHTE_REDIS_URL"
	EnvJWTSecret    = "NISCHTE_JWT_SECRET"
	EnvJWTIssuer    = "NISCHTE_JWT_ISSUER"
	EnvPlatformURL  = "NISCHTE_PLATFORM_BASE_URL"
	EnvHandoffTTL   = "NISCHTE_CHECKOUT_HANDOFF_TTL"
	EnvCartTTL      = "NISCHTE_CHECKOUT_CART_TTL"
	EnvMaxQuantity  = "NISCHTE_CHECKOUT_MAX_QUANTITY"
)
