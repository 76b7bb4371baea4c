package config

const EnvPrefix = "WAREHOUSEPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "WAREHOUSEPOS_APP_ENV"
	EnvPort                   = "WAREHOUSEPOS_APP_PORT"
	EnvLogLevel               = "WAREHOUSEPOS_LOG_LEVEL"
	EnvLogFormat              = "WAREHOUSEPOS_LOG_FORMAT"
	EnvDBDSN                  = "WAREHOUSEPOS_DB_DSN"
	EnvDBHost                 = "WAREHOUSEPOS_DB_HOST"
	EnvDBUser                 = "WAREHOUSEPOS_DB_USER"
	EnvDBName                 = "WAREHOUSEPOS_DB_NAME"
	EnvRedisURL               = "WAREHOUSEPOS_REDIS_URL"
	EnvJWTSecret              = "WAREHOUSEPOS_JWT_SECRET"
	EnvJWTIssuer              = "WAREHOUSEPOS_JWT_ISSUER"
	EnvJWTExpMins             = "WAREHOUSEPOS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WAREHOUSEPOS_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "WAREHOUSEPOS_USE_SQLITE"
	EnvBasketCacheTTL         = "WAREHOUSEPOS_BASKET_CACHE_TTL"
	EnvCheckoutLockTTL        = "WAREHOUSEPOS_CHECKOUT_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
