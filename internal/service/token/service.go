package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/pkg/crypto"
	jwtpkg "github.com/splax/learnhub/pkg/jwt"
)

// Verification failures. Callers on the request path must not reveal which one occurred.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenIssuer    = errors.New("token issued for another deployment")
	ErrTokenType      = errors.New("unexpected token type")
	ErrTokenRevoked   = errors.New("token revoked")
	ErrAccountInvalid = errors.New("account missing or inactive")
)

// Blacklist stores hashes of revoked tokens until their natural expiry.
type Blacklist interface {
	Add(ctx context.Context, hash string, expiresAt time.Time) error
	Contains(ctx context.Context, hash string) (bool, error)
}

// UserLookup loads the live account behind a refresh token.
type UserLookup func(ctx context.Context, id int64) (*domain.User, error)

// Config holds the immutable signing configuration.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Service issues, verifies and revokes bearer tokens.
type Service struct {
	signer     jwtpkg.Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  Blacklist
	logger     *slog.Logger
	now        func() time.Time
}

// New constructs a Service.
func New(cfg Config, blacklist Blacklist, logger *slog.Logger) (*Service, error) {
	signer, err := jwtpkg.NewSigner(cfg.Secret, cfg.Issuer)
	if err != nil {
		return nil, err
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	if blacklist == nil {
		return nil, errors.New("token: blacklist store is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		signer:     signer.WithClock(now),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		blacklist:  blacklist,
		logger:     logger,
		now:        now,
	}, nil
}

// IssueAccessToken mints a short-lived token carrying the identity snapshot.
func (s *Service) IssueAccessToken(userID int64, email, role string) (string, error) {
	return s.signer.Sign(userID, email, role, jwtpkg.TokenAccess, s.accessTTL)
}

// IssueRefreshToken mints a long-lived token carrying only the subject.
func (s *Service) IssueRefreshToken(userID int64) (string, error) {
	return s.signer.Sign(userID, "", "", jwtpkg.TokenRefresh, s.refreshTTL)
}

// IssuePair mints an access and refresh token for user.
func (s *Service) IssuePair(user *domain.User) (TokenPair, error) {
	access, err := s.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.accessTTL}, nil
}

// Verify checks signature, expiry, issuer, audience and type.
func (s *Service) Verify(raw string, want jwtpkg.TokenType) (*jwtpkg.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenMalformed
	}
	claims, err := s.signer.Parse(raw)
	if err != nil {
		return nil, classify(err)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrTokenType, claims.Type, want)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid), errors.Is(err, jwtlib.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	case errors.Is(err, jwtlib.ErrTokenInvalidIssuer), errors.Is(err, jwtlib.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", ErrTokenIssuer, err)
	}
	return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
}

// ExtractBearer reads "Authorization: Bearer <token>". The canonical lookup is
// tried first, then a case-insensitive scan for header maps that were built
// without canonicalizing keys.
func (s *Service) ExtractBearer(header http.Header) (string, bool) {
	return ExtractBearer(header)
}

// ExtractBearer is the stateless form of Service.ExtractBearer.
func ExtractBearer(header http.Header) (string, bool) {
	value := header.Get("Authorization")
	if value == "" {
		for key, values := range header {
			if strings.EqualFold(key, "Authorization") && len(values) > 0 {
				value = values[0]
				break
			}
		}
	}
	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthenticateAccess verifies an access token and resolves the caller from its
// claims without touching the user store.
func (s *Service) AuthenticateAccess(ctx context.Context, raw string) (domain.Identity, error) {
	claims, err := s.Verify(raw, jwtpkg.TokenAccess)
	if err != nil {
		return domain.Identity{}, err
	}
	if s.IsBlacklisted(ctx, raw) {
		return domain.Identity{}, ErrTokenRevoked
	}
	id, _ := claims.UserID()
	return domain.Identity{ID: id, Email: claims.Email, Role: claims.Role}, nil
}

// Refresh exchanges a refresh token for a new pair after confirming the
// account still exists and is active. Any failure yields no tokens.
func (s *Service) Refresh(ctx context.Context, raw string, lookup UserLookup) (TokenPair, error) {
	claims, err := s.Verify(raw, jwtpkg.TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if s.IsBlacklisted(ctx, raw) {
		return TokenPair{}, ErrTokenRevoked
	}
	id, _ := claims.UserID()
	user, err := lookup(ctx, id)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrAccountInvalid, err)
	}
	if user == nil || !user.IsActive {
		return TokenPair{}, ErrAccountInvalid
	}
	return s.IssuePair(user)
}

// Blacklist revokes raw until its expiry. Revoking the same token again is a no-op.
func (s *Service) Blacklist(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	claims, err := s.signer.ParseSignature(raw)
	if err != nil {
		return classify(err)
	}
	expiresAt := s.now().Add(s.refreshTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if !expiresAt.After(s.now()) {
		return nil
	}
	return s.blacklist.Add(ctx, crypto.HashToken(raw), expiresAt)
}

// IsBlacklisted reports whether raw was revoked.
//
// Lookup errors fail open: the error is logged and the token is treated as not
// revoked, so a store outage does not lock every caller out. A token revoked
// during such an outage stays usable until the store recovers or it expires.
func (s *Service) IsBlacklisted(ctx context.Context, raw string) bool {
	found, err := s.blacklist.Contains(ctx, crypto.HashToken(strings.TrimSpace(raw)))
	if err != nil {
		s.logger.Error("token blacklist lookup failed, allowing token", "error", err)
		return false
	}
	return found
}

// AccessTTL returns the lifetime of access tokens.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }
