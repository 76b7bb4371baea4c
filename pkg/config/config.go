package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Basket        BasketConfig
	Checkout      CheckoutConfig
	CORS          CORSConfig
	Bootstrap     BootstrapConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WAREHOUSEPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"WAREHOUSEPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WAREHOUSEPOS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"WAREHOUSEPOS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"WAREHOUSEPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"WAREHOUSEPOS_DB_DSN"`
	SQLitePath string `envconfig:"WAREHOUSEPOS_SQLITE_PATH" default:"warehousepos.db"`

	LegacyHost     string `envconfig:"WAREHOUSEPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"WAREHOUSEPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAREHOUSEPOS_DB_USER"`
	LegacyPassword string `envconfig:"WAREHOUSEPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAREHOUSEPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAREHOUSEPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAREHOUSEPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAREHOUSEPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAREHOUSEPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAREHOUSEPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"WAREHOUSEPOS_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAREHOUSEPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAREHOUSEPOS_REDIS_ADDR"`
	Password     string        `envconfig:"WAREHOUSEPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAREHOUSEPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAREHOUSEPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAREHOUSEPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAREHOUSEPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAREHOUSEPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAREHOUSEPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WAREHOUSEPOS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WAREHOUSEPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WAREHOUSEPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WAREHOUSEPOS_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WAREHOUSEPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WAREHOUSEPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WAREHOUSEPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WAREHOUSEPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WAREHOUSEPOS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"WAREHOUSEPOS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit int           `envconfig:"WAREHOUSEPOS_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit   int           `envconfig:"WAREHOUSEPOS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WAREHOUSEPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WAREHOUSEPOS_AUTO_MIGRATE" default:"false"`
}

type BasketConfig struct {
	CacheTTL time.Duration `envconfig:"WAREHOUSEPOS_BASKET_CACHE_TTL" default:"72h"`
}

type CheckoutConfig struct {
	LockTTL time.Duration `envconfig:"WAREHOUSEPOS_CHECKOUT_LOCK_TTL" default:"30s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WAREHOUSEPOS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// BootstrapConfig seeds the first admin account when the users table is empty.
type BootstrapConfig struct {
	AdminUsername string `envconfig:"WAREHOUSEPOS_BOOTSTRAP_ADMIN_USERNAME"`
	AdminPassword string `envconfig:"WAREHOUSEPOS_BOOTSTRAP_ADMIN_PASSWORD"`
	AdminName     string `envconfig:"WAREHOUSEPOS_BOOTSTRAP_ADMIN_NAME" default:"Administrator"`
}

func (b BootstrapConfig) Enabled() bool {
	return strings.TrimSpace(b.AdminUsername) != "" && b.AdminPassword != ""
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
