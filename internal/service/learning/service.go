package learning

import (
	"context"
	"time"

	"log/slog"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

// CourseGuard answers ownership and visibility questions about the catalogue.
type CourseGuard interface {
	EnsureCourseOwner(ctx context.Context, caller domain.Identity, courseID int64) error
	EnsureCourseVisible(ctx context.Context, caller *domain.Identity, courseID int64) error
	EnsureLessonVisible(ctx context.Context, caller domain.Identity, lessonID int64) error
}

// Lessons tracks lesson completion per learner.
type Lessons interface {
	LessonCourseID(ctx context.Context, lessonID int64) (int64, error)
	CountCourseLessons(ctx context.Context, courseID int64) (int, error)
	MarkLessonComplete(ctx context.Context, userID, lessonID int64, at time.Time) (bool, error)
	CountCompletedLessons(ctx context.Context, userID, courseID int64) (int, error)
}

// Achiever re-evaluates a learner's achievements after progress.
type Achiever interface {
	Check(ctx context.Context, userID int64) ([]domain.Achievement, error)
}

// Service manages enrollments, progress, certificates, notes and bookmarks.
type Service struct {
	repo     repository.LearningRepository
	lessons  Lessons
	guard    CourseGuard
	achiever Achiever
	logger   *slog.Logger
	now      func() time.Time
}

// New returns a learning service. achiever may be nil.
func New(repo repository.LearningRepository, lessons Lessons, guard CourseGuard, achiever Achiever, logger *slog.Logger) Service {
	return Service{
		repo:     repo,
		lessons:  lessons,
		guard:    guard,
		achiever: achiever,
		logger:   logger,
		now:      time.Now,
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

func ownedBy(caller domain.Identity, userID int64) bool {
	return caller.ID == userID || caller.IsAdmin()
}
