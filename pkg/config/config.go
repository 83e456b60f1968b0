package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigPathEnv names the variable pointing at an optional YAML config file.
const ConfigPathEnv = "CONFIG_PATH"

// LoadAPIConfig constructs an APIConfig from an optional YAML file and environment variables.
// Environment variables always win over file values.
func LoadAPIConfig() (APIConfig, error) {
	var cfg APIConfig
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return APIConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return APIConfig{}, fmt.Errorf("read env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return APIConfig{}, err
	}
	return cfg, nil
}

// MustLoadAPIConfig is LoadAPIConfig for process entrypoints.
func MustLoadAPIConfig() APIConfig {
	cfg, err := LoadAPIConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate reports configuration that would leave the API unable to authenticate anyone.
func (c APIConfig) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.AppURL) == "" {
		return errors.New("APP_URL is required, it pins token issuer and audience")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token ttls must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return errors.New("REFRESH_TOKEN_TTL must not be shorter than ACCESS_TOKEN_TTL")
	}
	switch c.BlacklistStore {
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unsupported BLACKLIST_STORE %q", c.BlacklistStore)
	}
	return nil
}

func (c *APIConfig) normalize() {
	c.AppURL = strings.TrimRight(strings.TrimSpace(c.AppURL), "/")
	c.BasePath = "/" + strings.Trim(strings.TrimSpace(c.BasePath), "/")
	if c.BasePath == "/" {
		c.BasePath = ""
	}
	c.BlacklistStore = strings.ToLower(strings.TrimSpace(c.BlacklistStore))
	origins := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, origin := range c.CORSAllowedOrigins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORSAllowedOrigins = origins
}
