package token

import (
	"context"
	"time"
)

// BlacklistRepository is the persistent form of the blacklist, e.g. a SQL table.
type BlacklistRepository interface {
	AddBlacklistedToken(ctx context.Context, hash string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, hash string, now time.Time) (bool, error)
}

// RepositoryBlacklist adapts a BlacklistRepository to Blacklist.
type RepositoryBlacklist struct {
	repo BlacklistRepository
	now  func() time.Time
}

// NewRepositoryBlacklist wraps repo.
func NewRepositoryBlacklist(repo BlacklistRepository) *RepositoryBlacklist {
	return &RepositoryBlacklist{repo: repo, now: time.Now}
}

func (b *RepositoryBlacklist) Add(ctx context.Context, hash string, expiresAt time.Time) error {
	return b.repo.AddBlacklistedToken(ctx, hash, expiresAt)
}

func (b *RepositoryBlacklist) Contains(ctx context.Context, hash string) (bool, error) {
	return b.repo.IsTokenBlacklisted(ctx, hash, b.now())
}
