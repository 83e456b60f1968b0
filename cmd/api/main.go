package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/splax/learnhub/internal/app/migrate"
	httpx "github.com/splax/learnhub/internal/http"
	"github.com/splax/learnhub/internal/repository/postgres"
	"github.com/splax/learnhub/internal/service/achievement"
	"github.com/splax/learnhub/internal/service/analytics"
	"github.com/splax/learnhub/internal/service/assessment"
	"github.com/splax/learnhub/internal/service/auth"
	"github.com/splax/learnhub/internal/service/catalog"
	"github.com/splax/learnhub/internal/service/learning"
	"github.com/splax/learnhub/internal/service/token"
	"github.com/splax/learnhub/internal/service/upload"
	"github.com/splax/learnhub/internal/service/user"
	"github.com/splax/learnhub/internal/ws"
	"github.com/splax/learnhub/pkg/config"
	"github.com/splax/learnhub/pkg/logger"
)

const blacklistPurgeInterval = time.Hour

func main() {
	cfg := config.MustLoadAPIConfig()
	log := logger.ForEnv("api", cfg.Environment, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)

	var redisClient *redis.Client
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, falling back to local stores", "addr", addr, "error", err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	blacklist := selectBlacklist(cfg, repo, redisClient, log)
	if closer, ok := blacklist.(interface{ Close() }); ok {
		defer closer.Close()
	}
	go purgeBlacklist(ctx, repo, log)

	tokens, err := token.New(token.Config{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.AppURL,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, blacklist, log)
	if err != nil {
		log.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub()
	defer hub.Close()

	catalogSvc := catalog.New(repo, log)
	achievementSvc := achievement.New(repo, hub, log)
	uploadSvc, err := upload.New(repo, upload.Config{
		Dir:        cfg.UploadDir,
		MaxBytes:   cfg.MaxUploadBytes,
		PublicPath: path.Join("/", cfg.BasePath, "files"),
	}, log)
	if err != nil {
		log.Error("failed to configure uploads", "error", err)
		os.Exit(1)
	}

	services := httpx.Services{
		Auth:         auth.New(repo, tokens, log),
		Tokens:       tokens,
		Users:        user.New(repo, log),
		Catalog:      catalogSvc,
		Assessment:   assessment.New(repo, catalogSvc, repo, achievementSvc, log),
		Learning:     learning.New(repo, repo, catalogSvc, achievementSvc, log),
		Achievements: achievementSvc,
		Analytics:    analytics.New(repo, catalogSvc),
		Uploads:      uploadSvc,
		Hub:          hub,
	}

	limiter := httpx.NewMemoryRateLimiter()
	if redisClient != nil {
		limiter = httpx.NewRedisRateLimiter(redisClient, log)
	}

	router, err := httpx.NewRouter(log, services, limiter, httpx.Options{
		BasePath:          cfg.BasePath,
		Debug:             cfg.Debug && !cfg.IsProduction(),
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		DBHealth:          pool.Ping,
	})
	if err != nil {
		log.Error("failed to build router", "error", err)
		os.Exit(1)
	}
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment, "base_path", cfg.BasePath)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

func selectBlacklist(cfg config.APIConfig, repo *postgres.Repository, client *redis.Client, log *slog.Logger) token.Blacklist {
	switch strings.ToLower(cfg.BlacklistStore) {
	case "redis":
		if client != nil {
			return token.NewRedisBlacklist(client, log)
		}
		log.Warn("redis blacklist requested without a reachable redis, using postgres")
	case "memory":
		return token.NewMemoryBlacklist()
	}
	return token.NewRepositoryBlacklist(repo)
}

// purgeBlacklist drops revoked tokens whose natural expiry has passed.
func purgeBlacklist(ctx context.Context, repo *postgres.Repository, log *slog.Logger) {
	ticker := time.NewTicker(blacklistPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := repo.PurgeExpiredTokens(ctx, now)
			if err != nil {
				log.Warn("blacklist purge failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Debug("blacklist purged", "removed", removed)
			}
		}
	}
}
