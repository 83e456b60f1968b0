package user

import (
	"context"
	"strings"

	"log/slog"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
	"github.com/splax/learnhub/pkg/crypto"
)

// Service manages accounts on behalf of administrators and their owners.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// New returns a user service.
func New(users repository.UserRepository, logger *slog.Logger) Service {
	return Service{users: users, logger: logger}
}

// CreateInput holds admin-provided account data.
type CreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// UpdateInput holds editable account fields. Nil pointers leave the field unchanged.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
	Role      *string
	IsActive  *bool
}

// List returns accounts matching filter.
func (s Service) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	return s.users.ListUsers(ctx, filter)
}

// Get returns one account.
func (s Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// Create registers an account with an explicit role.
func (s Service) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, domain.Invalid("unknown role %q", role)
	}
	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update applies an administrative edit.
func (s Service) Update(ctx context.Context, caller domain.Identity, id int64, input UpdateInput) (*domain.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Role != nil {
		if !domain.ValidRole(*input.Role) {
			return nil, domain.Invalid("unknown role %q", *input.Role)
		}
		if id == caller.ID && *input.Role != u.Role {
			return nil, domain.Invalid("administrators cannot change their own role")
		}
		u.Role = *input.Role
	}
	if input.IsActive != nil {
		if id == caller.ID && !*input.IsActive {
			return nil, domain.Invalid("administrators cannot deactivate themselves")
		}
		u.IsActive = *input.IsActive
	}
	applyProfile(u, input)
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SetStatus activates or deactivates an account.
func (s Service) SetStatus(ctx context.Context, caller domain.Identity, id int64, active bool) error {
	if id == caller.ID && !active {
		return domain.Invalid("administrators cannot deactivate themselves")
	}
	if err := s.users.SetUserActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("user status changed", "user_id", id, "active", active, "by", caller.ID)
	return nil
}

// Delete removes an account other than the caller's.
func (s Service) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if id == caller.ID {
		return domain.Invalid("administrators cannot delete themselves")
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "by", caller.ID)
	return nil
}

// UpdateProfile lets callers edit their own profile fields. Role and status are ignored.
func (s Service) UpdateProfile(ctx context.Context, caller domain.Identity, input UpdateInput) (*domain.User, error) {
	u, err := s.users.GetUserByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	applyProfile(u, input)
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// PublicProfile returns the public view of an active account.
func (s Service) PublicProfile(ctx context.Context, id int64) (*domain.PublicProfile, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, repository.ErrNotFound
	}
	profile := u.Profile()
	return &profile, nil
}

func applyProfile(u *domain.User, input UpdateInput) {
	if input.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.FirstName != nil {
		u.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		u.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Bio != nil {
		u.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		u.AvatarURL = *input.AvatarURL
	}
}
