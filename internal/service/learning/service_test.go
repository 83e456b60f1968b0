package learning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

type fakeLearningRepo struct {
	repository.LearningRepository
	enrollments  map[int64]*domain.Enrollment
	certificates []domain.Certificate
	notes        map[int64]*domain.Note
	updates      int
	conflicts    int
}

func newFakeLearningRepo() *fakeLearningRepo {
	return &fakeLearningRepo{
		enrollments: map[int64]*domain.Enrollment{
			1: {ID: 1, UserID: 20, CourseID: 1, Status: domain.EnrollmentActive},
		},
		notes: map[int64]*domain.Note{},
	}
}

func (f *fakeLearningRepo) GetEnrollment(_ context.Context, id int64) (*domain.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeLearningRepo) GetEnrollmentByUserCourse(_ context.Context, userID, courseID int64) (*domain.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLearningRepo) UpdateEnrollmentProgress(_ context.Context, e *domain.Enrollment) error {
	f.updates++
	clone := *e
	f.enrollments[e.ID] = &clone
	return nil
}

func (f *fakeLearningRepo) GetCertificateByUserCourse(_ context.Context, userID, courseID int64) (*domain.Certificate, error) {
	for _, c := range f.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLearningRepo) CreateCertificate(_ context.Context, c *domain.Certificate) error {
	if f.conflicts > 0 {
		f.conflicts--
		return repository.ErrConflict
	}
	c.ID = int64(len(f.certificates) + 1)
	f.certificates = append(f.certificates, *c)
	return nil
}

func (f *fakeLearningRepo) GetNote(_ context.Context, id int64) (*domain.Note, error) {
	n, ok := f.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return n, nil
}

// fakeLessons models course 1 with four lessons, numbered 1 to 4.
type fakeLessons struct {
	completed map[int64]bool
}

func (f *fakeLessons) LessonCourseID(_ context.Context, lessonID int64) (int64, error) {
	if lessonID < 1 || lessonID > 4 {
		return 0, repository.ErrNotFound
	}
	return 1, nil
}

func (f *fakeLessons) CountCourseLessons(context.Context, int64) (int, error) { return 4, nil }

func (f *fakeLessons) MarkLessonComplete(_ context.Context, _, lessonID int64, _ time.Time) (bool, error) {
	if f.completed[lessonID] {
		return false, nil
	}
	f.completed[lessonID] = true
	return true, nil
}

func (f *fakeLessons) CountCompletedLessons(context.Context, int64, int64) (int, error) {
	return len(f.completed), nil
}

type guardStub struct{ draft bool }

func (guardStub) EnsureCourseOwner(_ context.Context, caller domain.Identity, _ int64) error {
	if caller.Role == domain.RoleStudent {
		return domain.ErrForbidden
	}
	return nil
}

func (g guardStub) EnsureCourseVisible(context.Context, *domain.Identity, int64) error {
	if g.draft {
		return repository.ErrNotFound
	}
	return nil
}

func (guardStub) EnsureLessonVisible(context.Context, domain.Identity, int64) error { return nil }

type achieverStub struct{ calls int }

func (a *achieverStub) Check(context.Context, int64) ([]domain.Achievement, error) {
	a.calls++
	return nil, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var learner = domain.Identity{ID: 20, Role: domain.RoleStudent}

func TestProgress(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 3, 100},
		{5, 3, 100},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := Progress(tt.done, tt.total); got != tt.want {
			t.Fatalf("Progress(%d, %d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestCompleteLessonRecomputesProgressAndCertifies(t *testing.T) {
	repo := newFakeLearningRepo()
	lessons := &fakeLessons{completed: map[int64]bool{}}
	achiever := &achieverStub{}
	svc := New(repo, lessons, guardStub{}, achiever, newLogger())
	ctx := context.Background()

	result, err := svc.CompleteLesson(ctx, learner, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Enrollment.Progress != 25 || result.Certificate != nil {
		t.Fatalf("unexpected first completion %+v", result)
	}
	// completing the same lesson again does not move progress
	if result, _ = svc.CompleteLesson(ctx, learner, 1); result.Enrollment.Progress != 25 {
		t.Fatalf("expected idempotent completion, got %v", result.Enrollment.Progress)
	}

	for _, id := range []int64{2, 3, 4} {
		if result, err = svc.CompleteLesson(ctx, learner, id); err != nil {
			t.Fatalf("complete lesson %d: %v", id, err)
		}
	}
	if result.Enrollment.Status != domain.EnrollmentCompleted || result.Enrollment.CompletedAt == nil {
		t.Fatalf("expected completed enrollment, got %+v", result.Enrollment)
	}
	if result.Certificate == nil || !strings.HasPrefix(result.Certificate.Code, "LH-") || len(result.Certificate.Code) != 13 {
		t.Fatalf("expected certificate with code, got %+v", result.Certificate)
	}
	if achiever.calls != 5 {
		t.Fatalf("expected an achievement check per completion, got %d", achiever.calls)
	}

	updates := repo.updates
	if _, err := svc.SetProgress(ctx, learner, 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updates != updates || repo.enrollments[1].Progress != 100 {
		t.Fatalf("completed enrollment must not regress: %+v", repo.enrollments[1])
	}
	if len(repo.certificates) != 1 {
		t.Fatalf("expected exactly one certificate, got %d", len(repo.certificates))
	}
}

func TestCompleteLessonRequiresEnrollment(t *testing.T) {
	svc := New(newFakeLearningRepo(), &fakeLessons{completed: map[int64]bool{}}, guardStub{}, nil, newLogger())
	other := domain.Identity{ID: 21, Role: domain.RoleStudent}
	var inputErr *domain.InputError
	if _, err := svc.CompleteLesson(context.Background(), other, 1); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestSetProgress(t *testing.T) {
	repo := newFakeLearningRepo()
	lessons := &fakeLessons{completed: map[int64]bool{}}
	svc := New(repo, lessons, guardStub{}, nil, newLogger())
	ctx := context.Background()

	var inputErr *domain.InputError
	for _, p := range []float64{-1, 100.5} {
		if _, err := svc.SetProgress(ctx, learner, 1, p); !errors.As(err, &inputErr) {
			t.Fatalf("progress %v: expected input error, got %v", p, err)
		}
	}
	if _, err := svc.SetProgress(ctx, domain.Identity{ID: 99, Role: domain.RoleStudent}, 1, 50); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// nothing completed yet, so a claimed 100 earns nothing
	result, err := svc.SetProgress(ctx, learner, 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Certificate != nil || result.Enrollment.Status != domain.EnrollmentActive || result.Enrollment.Progress != 0 {
		t.Fatalf("unearned progress must not complete the course, got %+v", result.Enrollment)
	}
	if len(repo.certificates) != 0 {
		t.Fatalf("expected no certificate, got %d", len(repo.certificates))
	}

	lessons.completed[1] = true
	if result, _ = svc.SetProgress(ctx, learner, 1, 80); result.Enrollment.Progress != 25 {
		t.Fatalf("expected progress capped at 25, got %v", result.Enrollment.Progress)
	}
	if result, _ = svc.SetProgress(ctx, learner, 1, 10); result.Enrollment.Progress != 10 {
		t.Fatalf("expected progress below the cap to be kept, got %v", result.Enrollment.Progress)
	}

	for _, id := range []int64{2, 3, 4} {
		lessons.completed[id] = true
	}
	if result, err = svc.SetProgress(ctx, learner, 1, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Certificate == nil || result.Enrollment.Status != domain.EnrollmentCompleted {
		t.Fatalf("expected completion with certificate, got %+v", result)
	}
}

func TestIssueCertificateIsIdempotent(t *testing.T) {
	repo := newFakeLearningRepo()
	repo.conflicts = 1
	svc := New(repo, &fakeLessons{}, guardStub{}, nil, newLogger())
	ctx := context.Background()
	instructor := domain.Identity{ID: 10, Role: domain.RoleInstructor}

	first, err := svc.IssueCertificate(ctx, instructor, learner.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.IssueCertificate(ctx, instructor, learner.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Code != second.Code || len(repo.certificates) != 1 {
		t.Fatalf("expected a single certificate, got %v and %v", first.Code, second.Code)
	}
	if _, err := svc.IssueCertificate(ctx, learner, learner.ID, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("students cannot issue certificates, got %v", err)
	}
	var inputErr *domain.InputError
	if _, err := svc.IssueCertificate(ctx, instructor, 77, 1); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error for unenrolled user, got %v", err)
	}
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	svc := New(newFakeLearningRepo(), &fakeLessons{}, guardStub{draft: true}, nil, newLogger())
	if _, err := svc.Enroll(context.Background(), learner, 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for draft course, got %v", err)
	}
}

func TestNotesBelongToTheirAuthor(t *testing.T) {
	repo := newFakeLearningRepo()
	repo.notes[4] = &domain.Note{ID: 4, UserID: 99, LessonID: 1, Content: "mine"}
	svc := New(repo, &fakeLessons{}, guardStub{}, nil, newLogger())

	if _, err := svc.UpdateNote(context.Background(), learner, 4, "hijack"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteNote(context.Background(), learner, 4); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
