package config

import (
	"testing"
	"time"
)

func TestLoadAPIConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_URL", "https://learn.example.com/")
	t.Setenv("BASE_PATH", "/lms/")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com/, https://admin.example.com")
	t.Setenv("BLACKLIST_STORE", "Memory")

	cfg, err := LoadAPIConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppURL != "https://learn.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.AppURL)
	}
	if cfg.BasePath != "/lms" {
		t.Fatalf("unexpected base path %q", cfg.BasePath)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("unexpected access ttl %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("unexpected refresh ttl default %s", cfg.RefreshTokenTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.BlacklistStore != "memory" {
		t.Fatalf("expected store lowercased, got %q", cfg.BlacklistStore)
	}
}

func TestLoadAPIConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadAPIConfig(); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}

func TestLoadAPIConfigRequiresAppURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_URL", "")
	if _, err := LoadAPIConfig(); err == nil {
		t.Fatalf("expected error for empty APP_URL")
	}
}

func TestValidateRejectsBlankAppURL(t *testing.T) {
	cfg := APIConfig{
		JWTSecret:       "s",
		AppURL:          "  ",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		BlacklistStore:  "memory",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected app url validation error")
	}
}

func TestValidateRejectsShortRefreshTTL(t *testing.T) {
	cfg := APIConfig{
		JWTSecret:       "s",
		AppURL:          "https://learn.example.com",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Minute,
		BlacklistStore:  "memory",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ttl validation error")
	}
}

func TestNormalizeEmptyBasePath(t *testing.T) {
	cfg := APIConfig{BasePath: " / "}
	cfg.normalize()
	if cfg.BasePath != "" {
		t.Fatalf("expected empty base path, got %q", cfg.BasePath)
	}
}
