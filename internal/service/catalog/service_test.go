package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

type fakeCourseRepo struct {
	repository.CourseRepository
	courses    map[int64]*domain.Course
	modules    map[int64]*domain.Module
	lessons    map[int64]*domain.Lesson
	lastFilter domain.CourseFilter
	updates    int
	deleted    []int64
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses: map[int64]*domain.Course{
			1: {ID: 1, InstructorID: 10, Title: "Go", IsPublished: true},
			2: {ID: 2, InstructorID: 10, Title: "Draft"},
		},
		modules: map[int64]*domain.Module{
			5: {ID: 5, CourseID: 1, Title: "Basics"},
			6: {ID: 6, CourseID: 2, Title: "Hidden"},
		},
		lessons: map[int64]*domain.Lesson{
			9: {ID: 9, ModuleID: 5, Title: "Hello"},
		},
	}
}

func (f *fakeCourseRepo) GetCourse(_ context.Context, id int64) (*domain.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCourseRepo) ListCourses(_ context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	f.lastFilter = filter
	return nil, nil
}

func (f *fakeCourseRepo) UpdateCourse(_ context.Context, c *domain.Course) error {
	f.updates++
	f.courses[c.ID] = c
	return nil
}

func (f *fakeCourseRepo) DeleteCourse(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCourseRepo) GetModule(_ context.Context, id int64) (*domain.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (f *fakeCourseRepo) ListLessons(_ context.Context, moduleID int64) ([]domain.Lesson, error) {
	var out []domain.Lesson
	for _, l := range f.lessons {
		if l.ModuleID == moduleID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) GetLesson(_ context.Context, id int64) (*domain.Lesson, error) {
	l, ok := f.lessons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (f *fakeCourseRepo) LessonCourseID(_ context.Context, lessonID int64) (int64, error) {
	l, ok := f.lessons[lessonID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return f.modules[l.ModuleID].CourseID, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	owner    = domain.Identity{ID: 10, Role: domain.RoleInstructor}
	stranger = domain.Identity{ID: 11, Role: domain.RoleInstructor}
	admin    = domain.Identity{ID: 1, Role: domain.RoleAdmin}
	student  = domain.Identity{ID: 20, Role: domain.RoleStudent}
)

func TestDraftCoursesAreHidden(t *testing.T) {
	svc := New(newFakeCourseRepo(), newLogger())
	ctx := context.Background()

	if _, err := svc.GetCourse(ctx, nil, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("anonymous caller should not see a draft, got %v", err)
	}
	if _, err := svc.GetCourse(ctx, &student, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("student should not see a draft, got %v", err)
	}
	for _, caller := range []domain.Identity{owner, admin} {
		if _, err := svc.GetCourse(ctx, &caller, 2); err != nil {
			t.Fatalf("%s should see the draft: %v", caller.Role, err)
		}
	}
	if _, err := svc.GetCourse(ctx, nil, 1); err != nil {
		t.Fatalf("published course should be public: %v", err)
	}
	if _, err := svc.ListModules(ctx, nil, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("draft modules should be hidden, got %v", err)
	}
}

func TestOwnershipChecks(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := New(repo, newLogger())
	ctx := context.Background()
	input := CourseInput{Title: " Go 2 ", Level: "beginner"}

	if _, err := svc.UpdateCourse(ctx, stranger, 1, input); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another instructor, got %v", err)
	}
	if err := svc.DeleteCourse(ctx, stranger, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("drafts of other instructors should look missing, got %v", err)
	}
	if repo.updates != 0 || len(repo.deleted) != 0 {
		t.Fatalf("no writes expected, got %d updates and %v deletes", repo.updates, repo.deleted)
	}

	course, err := svc.UpdateCourse(ctx, owner, 1, input)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if course.Title != "Go 2" {
		t.Fatalf("expected trimmed title, got %q", course.Title)
	}
	if err := svc.EnsureCourseOwner(ctx, admin, 1); err != nil {
		t.Fatalf("admins own every course: %v", err)
	}
	if err := svc.EnsureLessonOwner(ctx, stranger, 9); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on lesson, got %v", err)
	}
}

func TestListingFilters(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := New(repo, newLogger())
	ctx := context.Background()

	_, _ = svc.ListCourses(ctx, domain.CourseFilter{InstructorID: 99})
	if !repo.lastFilter.PublishedOnly || repo.lastFilter.InstructorID != 0 {
		t.Fatalf("public listing must be published only, got %+v", repo.lastFilter)
	}
	_, _ = svc.Mine(ctx, owner, domain.CourseFilter{PublishedOnly: true})
	if repo.lastFilter.PublishedOnly || repo.lastFilter.InstructorID != owner.ID {
		t.Fatalf("instructor listing should be scoped to the caller, got %+v", repo.lastFilter)
	}
	_, _ = svc.Mine(ctx, admin, domain.CourseFilter{})
	if repo.lastFilter.InstructorID != 0 {
		t.Fatalf("admin listing should not be scoped, got %+v", repo.lastFilter)
	}
}

func TestLessonsFollowCourseVisibility(t *testing.T) {
	svc := New(newFakeCourseRepo(), newLogger())
	ctx := context.Background()

	lessons, err := svc.ListLessons(ctx, student, 5)
	if err != nil || len(lessons) != 1 {
		t.Fatalf("expected one lesson, got %v (%v)", lessons, err)
	}
	if _, err := svc.ListLessons(ctx, student, 6); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("lessons of a draft should be hidden, got %v", err)
	}
	if err := svc.EnsureLessonVisible(ctx, student, 9); err != nil {
		t.Fatalf("lesson of a published course should be visible: %v", err)
	}
}
