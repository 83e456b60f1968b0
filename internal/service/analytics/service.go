package analytics

import (
	"context"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

// CourseGuard checks course ownership.
type CourseGuard interface {
	EnsureCourseOwner(ctx context.Context, caller domain.Identity, courseID int64) error
}

// Service serves reporting aggregates.
type Service struct {
	repo  repository.AnalyticsRepository
	guard CourseGuard
}

// New returns an analytics service.
func New(repo repository.AnalyticsRepository, guard CourseGuard) Service {
	return Service{repo: repo, guard: guard}
}

// Dashboard is the role-specific overview of the caller. Exactly one field is set.
type Dashboard struct {
	Role       string                      `json:"role"`
	Student    *domain.StudentDashboard    `json:"student,omitempty"`
	Instructor *domain.InstructorDashboard `json:"instructor,omitempty"`
	Platform   *domain.PlatformAnalytics   `json:"platform,omitempty"`
}

// Dashboard returns the overview matching the caller's role.
func (s Service) Dashboard(ctx context.Context, caller domain.Identity) (*Dashboard, error) {
	d := &Dashboard{Role: caller.Role}
	var err error
	switch caller.Role {
	case domain.RoleAdmin:
		d.Platform, err = s.repo.PlatformAnalytics(ctx)
	case domain.RoleInstructor:
		d.Instructor, err = s.repo.InstructorDashboard(ctx, caller.ID)
	default:
		d.Student, err = s.repo.StudentDashboard(ctx, caller.ID)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Course returns engagement numbers of an owned course.
func (s Service) Course(ctx context.Context, caller domain.Identity, courseID int64) (*domain.CourseAnalytics, error) {
	if err := s.guard.EnsureCourseOwner(ctx, caller, courseID); err != nil {
		return nil, err
	}
	return s.repo.CourseAnalytics(ctx, courseID)
}

// Platform returns the administrator overview.
func (s Service) Platform(ctx context.Context) (*domain.PlatformAnalytics, error) {
	return s.repo.PlatformAnalytics(ctx)
}
