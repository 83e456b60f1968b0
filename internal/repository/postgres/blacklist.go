package postgres

import (
	"context"
	"time"
)

// AddBlacklistedToken records a revoked token hash. Re-adding is a no-op.
func (r *Repository) AddBlacklistedToken(ctx context.Context, hash string, expiresAt time.Time) error {
	const query = `INSERT INTO token_blacklist (token_hash, expires_at) VALUES ($1, $2)
		ON CONFLICT (token_hash) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, hash, expiresAt)
	return err
}

// IsTokenBlacklisted reports whether hash is revoked and not yet expired.
func (r *Repository) IsTokenBlacklisted(ctx context.Context, hash string, now time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_hash = $1 AND expires_at > $2)`
	var found bool
	if err := r.pool.QueryRow(ctx, query, hash, now).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// PurgeExpiredTokens deletes entries that expired before the cutoff.
func (r *Repository) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM token_blacklist WHERE expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
