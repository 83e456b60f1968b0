package learning

import (
	"context"
	"errors"
	"math"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

// LessonCompletion is the outcome of completing a lesson.
type LessonCompletion struct {
	LessonID    int64               `json:"lesson_id"`
	Enrollment  *domain.Enrollment  `json:"enrollment"`
	Certificate *domain.Certificate `json:"certificate,omitempty"`
}

// ListEnrollments returns the caller's enrollments.
func (s Service) ListEnrollments(ctx context.Context, caller domain.Identity) ([]domain.Enrollment, error) {
	return s.repo.ListEnrollments(ctx, caller.ID)
}

// Enroll registers the caller in a published course.
func (s Service) Enroll(ctx context.Context, caller domain.Identity, courseID int64) (*domain.Enrollment, error) {
	if err := s.guard.EnsureCourseVisible(ctx, nil, courseID); err != nil {
		return nil, err
	}
	enrollment := &domain.Enrollment{
		UserID:   caller.ID,
		CourseID: courseID,
		Status:   domain.EnrollmentActive,
	}
	if err := s.repo.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	s.logger.Info("enrolled", "user_id", caller.ID, "course_id", courseID)
	return enrollment, nil
}

// GetEnrollment returns an enrollment of the caller. Admins may read any.
func (s Service) GetEnrollment(ctx context.Context, caller domain.Identity, id int64) (*domain.Enrollment, error) {
	enrollment, err := s.repo.GetEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownedBy(caller, enrollment.UserID) {
		return nil, domain.ErrForbidden
	}
	return enrollment, nil
}

// SetProgress stores a progress percentage, capped at what the caller's
// completed lessons account for. Only a fully earned 100 completes the course.
func (s Service) SetProgress(ctx context.Context, caller domain.Identity, id int64, progress float64) (*LessonCompletion, error) {
	if progress < 0 || progress > 100 || math.IsNaN(progress) {
		return nil, domain.Invalid("progress must be between 0 and 100")
	}
	enrollment, err := s.repo.GetEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != caller.ID {
		return nil, domain.ErrForbidden
	}
	earned, err := s.lessonProgress(ctx, caller.ID, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	result, err := s.applyProgress(ctx, enrollment, min(progress, earned))
	if err != nil {
		return nil, err
	}
	if result.Certificate != nil {
		s.checkAchievements(ctx, caller.ID)
	}
	return result, nil
}

// Unenroll removes an enrollment of the caller. Admins may remove any.
func (s Service) Unenroll(ctx context.Context, caller domain.Identity, id int64) error {
	if _, err := s.GetEnrollment(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEnrollment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("unenrolled", "enrollment_id", id, "by", caller.ID)
	return nil
}

// CompleteLesson marks a lesson done for an enrolled caller and recomputes
// course progress from the completed lesson count.
func (s Service) CompleteLesson(ctx context.Context, caller domain.Identity, lessonID int64) (*LessonCompletion, error) {
	if err := s.guard.EnsureLessonVisible(ctx, caller, lessonID); err != nil {
		return nil, err
	}
	courseID, err := s.lessons.LessonCourseID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.repo.GetEnrollmentByUserCourse(ctx, caller.ID, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Invalid("enroll in course %d before completing its lessons", courseID)
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.lessons.MarkLessonComplete(ctx, caller.ID, lessonID, s.now().UTC()); err != nil {
		return nil, err
	}
	progress, err := s.lessonProgress(ctx, caller.ID, courseID)
	if err != nil {
		return nil, err
	}
	result, err := s.applyProgress(ctx, enrollment, progress)
	if err != nil {
		return nil, err
	}
	result.LessonID = lessonID
	s.checkAchievements(ctx, caller.ID)
	return result, nil
}

// lessonProgress is the share of the course's lessons userID has completed.
func (s Service) lessonProgress(ctx context.Context, userID, courseID int64) (float64, error) {
	total, err := s.lessons.CountCourseLessons(ctx, courseID)
	if err != nil {
		return 0, err
	}
	done, err := s.lessons.CountCompletedLessons(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	return Progress(done, total), nil
}

// Progress returns done/total as a percentage rounded to two decimals.
func Progress(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	done = min(max(done, 0), total)
	return math.Round(float64(done)*10000/float64(total)) / 100
}

// applyProgress persists progress. A completed course never goes back to active.
func (s Service) applyProgress(ctx context.Context, enrollment *domain.Enrollment, progress float64) (*LessonCompletion, error) {
	result := &LessonCompletion{Enrollment: enrollment}
	if enrollment.Status == domain.EnrollmentCompleted {
		return result, nil
	}
	enrollment.Progress = progress
	if progress >= 100 {
		now := s.now().UTC()
		enrollment.Progress = 100
		enrollment.Status = domain.EnrollmentCompleted
		enrollment.CompletedAt = &now
	}
	if err := s.repo.UpdateEnrollmentProgress(ctx, enrollment); err != nil {
		return nil, err
	}
	if enrollment.Status != domain.EnrollmentCompleted {
		return result, nil
	}
	s.logger.Info("course completed", "user_id", enrollment.UserID, "course_id", enrollment.CourseID)
	certificate, err := s.issueCertificate(ctx, enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	result.Certificate = certificate
	return result, nil
}
