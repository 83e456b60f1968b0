package assessment

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

// DefaultPassingScore applies when a quiz is created without one.
const DefaultPassingScore = 70

// CourseGuard answers ownership and visibility questions about the catalogue.
type CourseGuard interface {
	EnsureCourseOwner(ctx context.Context, caller domain.Identity, courseID int64) error
	EnsureCourseVisible(ctx context.Context, caller *domain.Identity, courseID int64) error
	EnsureLessonOwner(ctx context.Context, caller domain.Identity, lessonID int64) error
	EnsureLessonVisible(ctx context.Context, caller domain.Identity, lessonID int64) error
}

// Enrollments reports whether a learner is enrolled in a course.
type Enrollments interface {
	GetEnrollmentByUserCourse(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error)
}

// Achiever re-evaluates a learner's achievements after progress.
type Achiever interface {
	Check(ctx context.Context, userID int64) ([]domain.Achievement, error)
}

// Service manages quizzes, attempts and graded projects.
type Service struct {
	repo        repository.AssessmentRepository
	guard       CourseGuard
	enrollments Enrollments
	achiever    Achiever
	logger      *slog.Logger
	now         func() time.Time
}

// New returns an assessment service. achiever may be nil.
func New(repo repository.AssessmentRepository, guard CourseGuard, enrollments Enrollments, achiever Achiever, logger *slog.Logger) Service {
	return Service{
		repo:        repo,
		guard:       guard,
		enrollments: enrollments,
		achiever:    achiever,
		logger:      logger,
		now:         time.Now,
	}
}

// requireEnrollment lets managers through and requires students to be enrolled.
func (s Service) requireEnrollment(ctx context.Context, caller domain.Identity, courseID int64) error {
	if caller.Role != domain.RoleStudent {
		return nil
	}
	_, err := s.enrollments.GetEnrollmentByUserCourse(ctx, caller.ID, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrForbidden
	}
	return err
}

// manages reports whether caller may manage the course. Any error other than
// ErrForbidden is returned.
func (s Service) manages(ctx context.Context, caller domain.Identity, courseID int64) (bool, error) {
	if caller.Role == domain.RoleStudent {
		return false, nil
	}
	err := s.guard.EnsureCourseOwner(ctx, caller, courseID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s Service) checkAchievements(ctx context.Context, userID int64) {
	if s.achiever == nil {
		return
	}
	if _, err := s.achiever.Check(ctx, userID); err != nil {
		s.logger.Warn("achievement check failed", "user_id", userID, "error", err)
	}
}
