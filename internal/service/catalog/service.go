package catalog

import (
	"context"
	"strings"

	"log/slog"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

const featuredLimit = 6

// Service manages the course catalogue.
type Service struct {
	courses repository.CourseRepository
	logger  *slog.Logger
}

// New returns a catalogue service.
func New(courses repository.CourseRepository, logger *slog.Logger) Service {
	return Service{courses: courses, logger: logger}
}

// CourseInput holds editable course fields.
type CourseInput struct {
	Title        string
	Description  string
	Category     string
	Level        string
	ThumbnailURL string
	IsFeatured   bool
}

// ModuleInput holds editable module fields.
type ModuleInput struct {
	Title       string
	Description string
	Position    int
}

// LessonInput holds editable lesson fields.
type LessonInput struct {
	Title           string
	Content         string
	VideoURL        string
	DurationMinutes int
	Position        int
}

// ListCourses returns published courses.
func (s Service) ListCourses(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	filter.PublishedOnly = true
	filter.InstructorID = 0
	return s.courses.ListCourses(ctx, filter)
}

// Featured returns the featured published courses.
func (s Service) Featured(ctx context.Context) ([]domain.Course, error) {
	return s.courses.ListFeaturedCourses(ctx, featuredLimit)
}

// Mine lists the caller's courses, published or not. Admins see every course.
func (s Service) Mine(ctx context.Context, caller domain.Identity, filter domain.CourseFilter) ([]domain.Course, error) {
	filter.PublishedOnly = false
	filter.InstructorID = 0
	if !caller.IsAdmin() {
		filter.InstructorID = caller.ID
	}
	return s.courses.ListCourses(ctx, filter)
}

// GetCourse returns a course. Unpublished courses are only visible to their owner and admins.
func (s Service) GetCourse(ctx context.Context, caller *domain.Identity, id int64) (*domain.Course, error) {
	course, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, course) {
		return nil, repository.ErrNotFound
	}
	return course, nil
}

// CreateCourse stores a draft course owned by the caller.
func (s Service) CreateCourse(ctx context.Context, caller domain.Identity, input CourseInput) (*domain.Course, error) {
	course := &domain.Course{InstructorID: caller.ID}
	applyCourse(course, input)
	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info("course created", "course_id", course.ID, "instructor_id", caller.ID)
	return course, nil
}

// UpdateCourse replaces the editable fields of a course.
func (s Service) UpdateCourse(ctx context.Context, caller domain.Identity, id int64, input CourseInput) (*domain.Course, error) {
	course, err := s.ownedCourse(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	applyCourse(course, input)
	if err := s.courses.UpdateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// Publish toggles the visibility of a course.
func (s Service) Publish(ctx context.Context, caller domain.Identity, id int64, published bool) (*domain.Course, error) {
	course, err := s.ownedCourse(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.courses.SetCoursePublished(ctx, id, published); err != nil {
		return nil, err
	}
	course.IsPublished = published
	s.logger.Info("course visibility changed", "course_id", id, "published", published)
	return course, nil
}

// DeleteCourse removes a course with its modules and lessons.
func (s Service) DeleteCourse(ctx context.Context, caller domain.Identity, id int64) error {
	if _, err := s.ownedCourse(ctx, caller, id); err != nil {
		return err
	}
	if err := s.courses.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.logger.Info("course deleted", "course_id", id, "by", caller.ID)
	return nil
}

// Students returns the course roster.
func (s Service) Students(ctx context.Context, caller domain.Identity, id int64) ([]domain.EnrolledStudent, error) {
	if err := s.EnsureCourseOwner(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.courses.ListCourseStudents(ctx, id)
}

// EnsureCourseOwner returns domain.ErrForbidden unless caller is an admin or the course instructor.
func (s Service) EnsureCourseOwner(ctx context.Context, caller domain.Identity, courseID int64) error {
	_, err := s.ownedCourse(ctx, caller, courseID)
	return err
}

// EnsureCourseVisible returns repository.ErrNotFound when caller may not see the course.
func (s Service) EnsureCourseVisible(ctx context.Context, caller *domain.Identity, courseID int64) error {
	_, err := s.GetCourse(ctx, caller, courseID)
	return err
}

// ListModules returns the modules of a visible course.
func (s Service) ListModules(ctx context.Context, caller *domain.Identity, courseID int64) ([]domain.Module, error) {
	if err := s.EnsureCourseVisible(ctx, caller, courseID); err != nil {
		return nil, err
	}
	return s.courses.ListModules(ctx, courseID)
}

// GetModule returns a module of a visible course.
func (s Service) GetModule(ctx context.Context, caller domain.Identity, id int64) (*domain.Module, error) {
	module, err := s.courses.GetModule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureCourseVisible(ctx, &caller, module.CourseID); err != nil {
		return nil, err
	}
	return module, nil
}

// CreateModule appends a module to an owned course.
func (s Service) CreateModule(ctx context.Context, caller domain.Identity, courseID int64, input ModuleInput) (*domain.Module, error) {
	if err := s.EnsureCourseOwner(ctx, caller, courseID); err != nil {
		return nil, err
	}
	module := &domain.Module{
		CourseID:    courseID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Position:    input.Position,
	}
	if err := s.courses.CreateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// UpdateModule edits a module of an owned course.
func (s Service) UpdateModule(ctx context.Context, caller domain.Identity, id int64, input ModuleInput) (*domain.Module, error) {
	module, err := s.courses.GetModule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureCourseOwner(ctx, caller, module.CourseID); err != nil {
		return nil, err
	}
	module.Title = strings.TrimSpace(input.Title)
	module.Description = input.Description
	module.Position = input.Position
	if err := s.courses.UpdateModule(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

// DeleteModule removes a module of an owned course.
func (s Service) DeleteModule(ctx context.Context, caller domain.Identity, id int64) error {
	module, err := s.courses.GetModule(ctx, id)
	if err != nil {
		return err
	}
	if err := s.EnsureCourseOwner(ctx, caller, module.CourseID); err != nil {
		return err
	}
	return s.courses.DeleteModule(ctx, id)
}

// ListLessons returns the lessons of a module in a visible course.
func (s Service) ListLessons(ctx context.Context, caller domain.Identity, moduleID int64) ([]domain.Lesson, error) {
	if _, err := s.GetModule(ctx, caller, moduleID); err != nil {
		return nil, err
	}
	return s.courses.ListLessons(ctx, moduleID)
}

// GetLesson returns a lesson of a visible course.
func (s Service) GetLesson(ctx context.Context, caller domain.Identity, id int64) (*domain.Lesson, error) {
	lesson, err := s.courses.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetModule(ctx, caller, lesson.ModuleID); err != nil {
		return nil, err
	}
	return lesson, nil
}

// CreateLesson appends a lesson to a module of an owned course.
func (s Service) CreateLesson(ctx context.Context, caller domain.Identity, moduleID int64, input LessonInput) (*domain.Lesson, error) {
	module, err := s.courses.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureCourseOwner(ctx, caller, module.CourseID); err != nil {
		return nil, err
	}
	lesson := &domain.Lesson{ModuleID: moduleID}
	applyLesson(lesson, input)
	if err := s.courses.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// UpdateLesson edits a lesson of an owned course.
func (s Service) UpdateLesson(ctx context.Context, caller domain.Identity, id int64, input LessonInput) (*domain.Lesson, error) {
	lesson, err := s.courses.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureLessonOwner(ctx, caller, id); err != nil {
		return nil, err
	}
	applyLesson(lesson, input)
	if err := s.courses.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson removes a lesson of an owned course.
func (s Service) DeleteLesson(ctx context.Context, caller domain.Identity, id int64) error {
	if err := s.EnsureLessonOwner(ctx, caller, id); err != nil {
		return err
	}
	return s.courses.DeleteLesson(ctx, id)
}

// EnsureLessonOwner resolves the course of a lesson and checks ownership.
func (s Service) EnsureLessonOwner(ctx context.Context, caller domain.Identity, lessonID int64) error {
	courseID, err := s.courses.LessonCourseID(ctx, lessonID)
	if err != nil {
		return err
	}
	return s.EnsureCourseOwner(ctx, caller, courseID)
}

// EnsureLessonVisible resolves the course of a lesson and checks visibility.
func (s Service) EnsureLessonVisible(ctx context.Context, caller domain.Identity, lessonID int64) error {
	courseID, err := s.courses.LessonCourseID(ctx, lessonID)
	if err != nil {
		return err
	}
	return s.EnsureCourseVisible(ctx, &caller, courseID)
}

func (s Service) ownedCourse(ctx context.Context, caller domain.Identity, id int64) (*domain.Course, error) {
	course, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() || course.InstructorID == caller.ID {
		return course, nil
	}
	if !course.IsPublished {
		return nil, repository.ErrNotFound
	}
	return nil, domain.ErrForbidden
}

func canView(caller *domain.Identity, course *domain.Course) bool {
	if course.IsPublished {
		return true
	}
	if caller == nil {
		return false
	}
	return caller.IsAdmin() || course.InstructorID == caller.ID
}

func applyCourse(course *domain.Course, input CourseInput) {
	course.Title = strings.TrimSpace(input.Title)
	course.Description = input.Description
	course.Category = strings.TrimSpace(input.Category)
	course.Level = input.Level
	course.ThumbnailURL = input.ThumbnailURL
	course.IsFeatured = input.IsFeatured
}

func applyLesson(lesson *domain.Lesson, input LessonInput) {
	lesson.Title = strings.TrimSpace(input.Title)
	lesson.Content = input.Content
	lesson.VideoURL = input.VideoURL
	lesson.DurationMinutes = input.DurationMinutes
	lesson.Position = input.Position
}
