package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/internal/service/token"
	"github.com/splax/learnhub/pkg/crypto"
)

// Tokens is the part of the token service the auth workflows use.
type Tokens interface {
	IssuePair(user *domain.User) (token.TokenPair, error)
	Refresh(ctx context.Context, raw string, lookup token.UserLookup) (token.TokenPair, error)
	Blacklist(ctx context.Context, raw string) error
}

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	tokens Tokens
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Service.
func New(users repository.UserRepository, tokens Tokens, logger *slog.Logger) Service {
	return Service{users: users, tokens: tokens, logger: logger, now: time.Now}
}

// RegisterInput carries self-service sign-up data.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a student account and signs it in.
func (s Service) Register(ctx context.Context, input RegisterInput) (*domain.User, token.TokenPair, error) {
	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, token.TokenPair{}, err
	}
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         domain.RoleStudent,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, token.TokenPair{}, err
	}
	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, token.TokenPair{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Login authenticates a user and returns tokens.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, token.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, token.TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, token.TokenPair{}, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login rejected", "user_id", user.ID)
		return nil, token.TokenPair{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, token.TokenPair{}, domain.ErrAccountInactive
	}
	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, token.TokenPair{}, err
	}
	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Refresh trades a refresh token for a new pair using the live account state.
func (s Service) Refresh(ctx context.Context, refreshToken string) (token.TokenPair, error) {
	return s.tokens.Refresh(ctx, refreshToken, s.users.GetUserByID)
}

// Logout revokes the presented access token and, when given, the refresh token.
func (s Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.tokens.Blacklist(ctx, accessToken); err != nil {
		return err
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	if err := s.tokens.Blacklist(ctx, refreshToken); err != nil {
		// The access token is already revoked; an unusable refresh token is not worth failing logout.
		s.logger.Warn("refresh token not revoked", "error", err)
	}
	return nil
}

// Me loads the caller's account.
func (s Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ChangePassword replaces the password after checking the current one.
func (s Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := crypto.ComparePassword(user.PasswordHash, current); err != nil {
		return domain.Invalid("current password is incorrect")
	}
	if current == next {
		return domain.Invalid("new password must differ from the current one")
	}
	hash, err := crypto.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}
