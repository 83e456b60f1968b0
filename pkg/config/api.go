package config

import (
	"strings"
	"time"
)

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment   string `yaml:"env" env:"APP_ENV" env-default:"development"`
	Addr          string `yaml:"addr" env:"API_ADDR" env-default:":8080"`
	AppURL        string `yaml:"app_url" env:"APP_URL" env-default:"http://localhost:8080"`
	BasePath      string `yaml:"base_path" env:"BASE_PATH" env-default:""`
	Debug         bool   `yaml:"debug" env:"DEBUG" env-default:"false"`
	DatabaseURL   string `yaml:"database_url" env:"DATABASE_URL" env-default:"postgres://learnhub:learnhub@db:5432/learnhub?sslmode=disable"`
	MigrationsDir string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR" env-default:"./migrations"`

	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:""`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	BlacklistStore string `yaml:"blacklist_store" env:"BLACKLIST_STORE" env-default:"postgres"`
	RedisAddr      string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:""`
	RedisPassword  string `yaml:"redis_password" env:"REDIS_PASSWORD" env-default:""`
	RedisDB        int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	RateLimitRequests int           `yaml:"rate_limit_requests" env:"RATE_LIMIT_REQUESTS" env-default:"120"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`

	UploadDir      string `yaml:"upload_dir" env:"UPLOAD_DIR" env-default:"./uploads"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" env-default:"1048576"`
}

// IsProduction reports whether the service runs with production settings.
func (c APIConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
