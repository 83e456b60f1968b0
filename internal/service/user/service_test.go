package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

type userRepoMock struct {
	repository.UserRepository
	users   map[int64]*domain.User
	updated *domain.User
}

func (m *userRepoMock) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *userRepoMock) UpdateUser(_ context.Context, u *domain.User) error {
	m.updated = u
	return nil
}

func (m *userRepoMock) CreateUser(_ context.Context, u *domain.User) error {
	u.ID = int64(len(m.users) + 1)
	m.users[u.ID] = u
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func TestCreateValidatesRole(t *testing.T) {
	svc := New(&userRepoMock{users: map[int64]*domain.User{}}, newLogger())
	var inputErr *domain.InputError
	if _, err := svc.Create(context.Background(), CreateInput{Email: "a@b.c", Password: "Secret123!", Role: "owner"}); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error, got %v", err)
	}
	u, err := svc.Create(context.Background(), CreateInput{Email: "I@B.C", Password: "Secret123!", Role: domain.RoleInstructor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != domain.RoleInstructor || u.Email != "i@b.c" || !u.IsActive {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	repo := &userRepoMock{users: map[int64]*domain.User{
		1: {ID: 1, Role: domain.RoleAdmin, IsActive: true},
	}}
	svc := New(repo, newLogger())
	admin := domain.Identity{ID: 1, Role: domain.RoleAdmin}
	ctx := context.Background()

	var inputErr *domain.InputError
	if _, err := svc.Update(ctx, admin, 1, UpdateInput{Role: ptr(domain.RoleStudent)}); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error on self demotion, got %v", err)
	}
	if err := svc.SetStatus(ctx, admin, 1, false); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error on self deactivation, got %v", err)
	}
	if err := svc.Delete(ctx, admin, 1); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error on self deletion, got %v", err)
	}
}

func TestUpdateProfileIgnoresPrivilegedFields(t *testing.T) {
	repo := &userRepoMock{users: map[int64]*domain.User{
		7: {ID: 7, Role: domain.RoleStudent, IsActive: true, FirstName: "Old"},
	}}
	svc := New(repo, newLogger())
	u, err := svc.UpdateProfile(context.Background(), domain.Identity{ID: 7, Role: domain.RoleStudent}, UpdateInput{
		FirstName: ptr("  New "),
		Role:      ptr(domain.RoleAdmin),
		IsActive:  ptr(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.FirstName != "New" || u.Role != domain.RoleStudent || !u.IsActive {
		t.Fatalf("unexpected profile update %+v", u)
	}
}

func TestPublicProfileHidesInactive(t *testing.T) {
	repo := &userRepoMock{users: map[int64]*domain.User{
		2: {ID: 2, FirstName: "Gone", IsActive: false},
		3: {ID: 3, FirstName: "Here", Email: "secret@x.y", IsActive: true},
	}}
	svc := New(repo, newLogger())
	if _, err := svc.PublicProfile(context.Background(), 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("inactive accounts have no public profile, got %v", err)
	}
	p, err := svc.PublicProfile(context.Background(), 3)
	if err != nil || p.FirstName != "Here" {
		t.Fatalf("unexpected profile %+v (%v)", p, err)
	}
}
