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
	Session       SessionConfig
	Password      PasswordConfig
	Lockout       LockoutConfig
	Cache         CacheConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HOMEGOODS_APP_ENV" required:"true"`
	Port         string `envconfig:"HOMEGOODS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HOMEGOODS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOMEGOODS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HOMEGOODS_DB_DSN"`
	Driver string `envconfig:"HOMEGOODS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HOMEGOODS_DB_HOST"`
	LegacyPort     int    `envconfig:"HOMEGOODS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOMEGOODS_DB_USER"`
	LegacyPassword string `envconfig:"HOMEGOODS_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOMEGOODS_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOMEGOODS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOMEGOODS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOMEGOODS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOMEGOODS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOMEGOODS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOMEGOODS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOMEGOODS_REDIS_ADDR"`
	Password     string        `envconfig:"HOMEGOODS_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOMEGOODS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOMEGOODS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOMEGOODS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOMEGOODS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOMEGOODS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOMEGOODS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HOMEGOODS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HOMEGOODS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"HOMEGOODS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"HOMEGOODS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// SessionConfig covers the legacy cookie session kept for the migration window.
type SessionConfig struct {
	Secret     string `envconfig:"HOMEGOODS_SESSION_SECRET" required:"true"`
	TTLMinutes int    `envconfig:"HOMEGOODS_SESSION_TTL_MINUTES" default:"10080"`
}

// TTL returns the legacy session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HOMEGOODS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HOMEGOODS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HOMEGOODS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HOMEGOODS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HOMEGOODS_ARGON_KEY_LEN" default:"32"`
}

// LockoutConfig tunes the failed-login tracker.
type LockoutConfig struct {
	MaxFailures int           `envconfig:"HOMEGOODS_LOCKOUT_MAX_FAILURES" default:"5"`
	Window      time.Duration `envconfig:"HOMEGOODS_LOCKOUT_WINDOW" default:"15m"`
	Cooldown    time.Duration `envconfig:"HOMEGOODS_LOCKOUT_COOLDOWN" default:"30m"`
}

// CacheConfig tunes the redis-backed listing cache.
type CacheConfig struct {
	ListingTTL time.Duration `envconfig:"HOMEGOODS_CACHE_LISTING_TTL" default:"5m"`
	StatsTTL   time.Duration `envconfig:"HOMEGOODS_CACHE_STATS_TTL" default:"1m"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"HOMEGOODS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"HOMEGOODS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"HOMEGOODS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HOMEGOODS_AUTO_MIGRATE" default:"false"`
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
