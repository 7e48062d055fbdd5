package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GEARMARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "GEARMARKET_APP_ENV"
	EnvPort              = "GEARMARKET_APP_PORT"
	EnvRedisURL          = "GEARMARKET_REDIS_URL"
	EnvUpstreamBaseURL   = "GEARMARKET_UPSTREAM_BASE_URL"
	EnvStoragePublicURL  = "GEARMARKET_STORAGE_PUBLIC_BASE_URL"
	EnvStorageAssetVer   = "GEARMARKET_STORAGE_ASSET_VERSION"
	EnvSessionTTL        = "GEARMARKET_SESSION_TTL"
	EnvDraftTTL          = "GEARMARKET_DRAFT_TTL"
	EnvUploadMaxFiles    = "GEARMARKET_UPLOAD_MAX_FILES"
	EnvUploadMaxBytes    = "GEARMARKET_UPLOAD_MAX_FILE_BYTES"
	EnvCORSAllowedOrigin = "GEARMARKET_CORS_ALLOWED_ORIGINS"
)

type Config struct {
	App           AppConfig
	Redis         RedisConfig
	Upstream      UpstreamConfig
	Storage       StorageConfig
	Session       SessionConfig
	Drafts        DraftsConfig
	Uploads       UploadsConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	if cfg.Session.TTL <= cfg.Session.RefreshSkew {
		return nil, fmt.Errorf("session ttl (%s) must exceed refresh skew (%s)", cfg.Session.TTL, cfg.Session.RefreshSkew)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GEARMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"GEARMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GEARMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GEARMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"GEARMARKET_REDIS_URL"`
	Address      string        `envconfig:"GEARMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"GEARMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"GEARMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GEARMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GEARMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GEARMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GEARMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GEARMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// UpstreamConfig points at the marketplace REST API.
type UpstreamConfig struct {
	BaseURL    string        `envconfig:"GEARMARKET_UPSTREAM_BASE_URL" required:"true"`
	Timeout    time.Duration `envconfig:"GEARMARKET_UPSTREAM_TIMEOUT" default:"15s"`
	RetryCount int           `envconfig:"GEARMARKET_UPSTREAM_RETRY_COUNT" default:"2"`
	RetryWait  time.Duration `envconfig:"GEARMARKET_UPSTREAM_RETRY_WAIT" default:"200ms"`
}

func (u UpstreamConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(u.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvUpstreamBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvUpstreamBaseURL)
	}
	return nil
}

// StorageConfig describes where listing images are publicly served from.
// An empty AssetVersion is filled in once at process start.
type StorageConfig struct {
	PublicBaseURL string `envconfig:"GEARMARKET_STORAGE_PUBLIC_BASE_URL"`
	AssetVersion  string `envconfig:"GEARMARKET_STORAGE_ASSET_VERSION"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"GEARMARKET_SESSION_COOKIE_NAME" default:"gm_session"`
	CookieSecure bool          `envconfig:"GEARMARKET_SESSION_COOKIE_SECURE" default:"true"`
	TTL          time.Duration `envconfig:"GEARMARKET_SESSION_TTL" default:"720h"`
	RefreshSkew  time.Duration `envconfig:"GEARMARKET_SESSION_REFRESH_SKEW" default:"1m"`
}

type DraftsConfig struct {
	TTL     time.Duration `envconfig:"GEARMARKET_DRAFT_TTL" default:"2h"`
	LockTTL time.Duration `envconfig:"GEARMARKET_DRAFT_LOCK_TTL" default:"5s"`
}

type UploadsConfig struct {
	MaxFiles     int   `envconfig:"GEARMARKET_UPLOAD_MAX_FILES" default:"10"`
	MaxFileBytes int64 `envconfig:"GEARMARKET_UPLOAD_MAX_FILE_BYTES" default:"5242880"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GEARMARKET_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GEARMARKET_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GEARMARKET_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GEARMARKET_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GEARMARKET_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GEARMARKET_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GEARMARKET_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
