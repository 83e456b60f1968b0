package assessment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/repository"
)

type fakeAssessmentRepo struct {
	repository.AssessmentRepository
	quizzes   map[int64]*domain.Quiz
	questions []domain.Question
	projects  map[int64]*domain.Project
	attempts  []domain.QuizAttempt
	listedFor []int64
	graded    *domain.Project
}

func (f *fakeAssessmentRepo) GetQuiz(_ context.Context, id int64) (*domain.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *q
	return &clone, nil
}

func (f *fakeAssessmentRepo) QuizCourseID(context.Context, int64) (int64, error) { return 1, nil }

func (f *fakeAssessmentRepo) ListQuestions(context.Context, int64) ([]domain.Question, error) {
	return f.questions, nil
}

func (f *fakeAssessmentRepo) CreateAttempt(_ context.Context, a *domain.QuizAttempt) error {
	a.ID = int64(len(f.attempts) + 1)
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeAssessmentRepo) ListAttempts(_ context.Context, _ int64, userID int64) ([]domain.QuizAttempt, error) {
	f.listedFor = append(f.listedFor, userID)
	return nil, nil
}

func (f *fakeAssessmentRepo) GetProject(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeAssessmentRepo) GradeProject(_ context.Context, p *domain.Project) error {
	f.graded = p
	return nil
}

// guardStub treats user 10 as the only instructor of course 1.
type guardStub struct{}

func (guardStub) EnsureCourseOwner(_ context.Context, caller domain.Identity, _ int64) error {
	if caller.IsAdmin() || caller.ID == 10 {
		return nil
	}
	return domain.ErrForbidden
}

func (guardStub) EnsureCourseVisible(context.Context, *domain.Identity, int64) error { return nil }

func (g guardStub) EnsureLessonOwner(ctx context.Context, caller domain.Identity, _ int64) error {
	return g.EnsureCourseOwner(ctx, caller, 1)
}

func (guardStub) EnsureLessonVisible(context.Context, domain.Identity, int64) error { return nil }

type enrollmentStub map[int64]bool

func (e enrollmentStub) GetEnrollmentByUserCourse(_ context.Context, userID, courseID int64) (*domain.Enrollment, error) {
	if !e[userID] {
		return nil, repository.ErrNotFound
	}
	return &domain.Enrollment{UserID: userID, CourseID: courseID}, nil
}

type achieverStub struct{ calls []int64 }

func (a *achieverStub) Check(_ context.Context, userID int64) ([]domain.Achievement, error) {
	a.calls = append(a.calls, userID)
	return nil, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newQuizRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{
		quizzes: map[int64]*domain.Quiz{3: {ID: 3, LessonID: 4, PassingScore: 70}},
		questions: []domain.Question{
			{ID: 1, Options: []string{"a", "b"}, CorrectOption: 0, Points: 2},
			{ID: 2, Options: []string{"a", "b", "c"}, CorrectOption: 2, Points: 1},
			{ID: 3, Options: []string{"a", "b"}, CorrectOption: 1, Points: 1},
		},
	}
}

var (
	instructor = domain.Identity{ID: 10, Role: domain.RoleInstructor}
	learner    = domain.Identity{ID: 20, Role: domain.RoleStudent}
	outsider   = domain.Identity{ID: 21, Role: domain.RoleStudent}
)

func TestScore(t *testing.T) {
	questions := []domain.Question{
		{ID: 1, CorrectOption: 0, Points: 3},
		{ID: 2, CorrectOption: 1},
		{ID: 3, CorrectOption: 2, Points: 2},
	}
	tests := []struct {
		name    string
		answers map[int64]int
		want    Result
	}{
		{name: "all correct", answers: map[int64]int{1: 0, 2: 1, 3: 2}, want: Result{Score: 6, MaxScore: 6, Percentage: 100}},
		{name: "none", answers: nil, want: Result{Score: 0, MaxScore: 6, Percentage: 0}},
		{name: "zero points count as one", answers: map[int64]int{2: 1}, want: Result{Score: 1, MaxScore: 6, Percentage: 16.67}},
		{name: "unknown question ignored", answers: map[int64]int{1: 0, 99: 0}, want: Result{Score: 3, MaxScore: 6, Percentage: 50}},
		{name: "wrong option", answers: map[int64]int{1: 1, 3: 2}, want: Result{Score: 2, MaxScore: 6, Percentage: 33.33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(questions, tt.answers); got != tt.want {
				t.Fatalf("Score() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if !Passed(70, 70) || Passed(69.99, 70) {
		t.Fatalf("passing is inclusive of the passing score")
	}
}

func TestSubmitRecordsAttemptAndChecksAchievements(t *testing.T) {
	repo := newQuizRepo()
	achiever := &achieverStub{}
	svc := New(repo, guardStub{}, enrollmentStub{learner.ID: true}, achiever, newLogger())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	attempt, err := svc.Submit(context.Background(), learner, 3, map[int64]int{1: 0, 2: 2, 3: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt.Score != 3 || attempt.MaxScore != 4 || attempt.Percentage != 75 || !attempt.Passed {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
	if attempt.UserID != learner.ID || attempt.SubmittedAt.IsZero() {
		t.Fatalf("attempt not attributed: %+v", attempt)
	}
	if len(repo.attempts) != 1 {
		t.Fatalf("expected one stored attempt, got %d", len(repo.attempts))
	}
	if len(achiever.calls) != 1 || achiever.calls[0] != learner.ID {
		t.Fatalf("expected achievement check for learner, got %v", achiever.calls)
	}

	failed, err := svc.Submit(context.Background(), learner, 3, map[int64]int{1: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed.Passed || len(achiever.calls) != 1 {
		t.Fatalf("failed attempt should not trigger achievements: %+v, %v", failed, achiever.calls)
	}
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	repo := newQuizRepo()
	svc := New(repo, guardStub{}, enrollmentStub{}, nil, newLogger())

	if _, err := svc.Submit(context.Background(), outsider, 3, map[int64]int{1: 0}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), instructor, 3, map[int64]int{1: 0}); err != nil {
		t.Fatalf("instructors may preview their quiz: %v", err)
	}

	repo.questions = nil
	var inputErr *domain.InputError
	if _, err := svc.Submit(context.Background(), instructor, 3, nil); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error for empty quiz, got %v", err)
	}
}

func TestAttemptsScope(t *testing.T) {
	repo := newQuizRepo()
	svc := New(repo, guardStub{}, enrollmentStub{}, nil, newLogger())
	ctx := context.Background()

	if _, err := svc.Attempts(ctx, learner, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Attempts(ctx, instructor, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.listedFor) != 2 || repo.listedFor[0] != learner.ID || repo.listedFor[1] != 0 {
		t.Fatalf("expected learner scope then all, got %v", repo.listedFor)
	}

	_, reveal, err := svc.Questions(ctx, learner, 3)
	if err != nil || reveal {
		t.Fatalf("learners must not see answers (reveal=%v, err=%v)", reveal, err)
	}
	_, reveal, err = svc.Questions(ctx, instructor, 3)
	if err != nil || !reveal {
		t.Fatalf("instructors see answers (reveal=%v, err=%v)", reveal, err)
	}
}

func TestQuestionValidation(t *testing.T) {
	tests := []struct {
		name  string
		input QuestionInput
		ok    bool
	}{
		{name: "valid", input: QuestionInput{Prompt: "?", Options: []string{"a", "b"}, CorrectOption: 1}, ok: true},
		{name: "one option", input: QuestionInput{Prompt: "?", Options: []string{"a"}}},
		{name: "blank option", input: QuestionInput{Prompt: "?", Options: []string{"a", " ", "c"}}},
		{name: "index out of range", input: QuestionInput{Prompt: "?", Options: []string{"a", "b"}, CorrectOption: 2}},
		{name: "negative index", input: QuestionInput{Prompt: "?", Options: []string{"a", "b"}, CorrectOption: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q domain.Question
			err := applyQuestion(&q, tt.input)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected validation error")
			}
			if tt.ok && q.Points != 1 {
				t.Fatalf("expected default points 1, got %d", q.Points)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	repo := &fakeAssessmentRepo{projects: map[int64]*domain.Project{
		8: {ID: 8, UserID: learner.ID, CourseID: 1, Status: domain.ProjectSubmitted},
	}}
	svc := New(repo, guardStub{}, enrollmentStub{}, nil, newLogger())
	ctx := context.Background()

	var inputErr *domain.InputError
	if _, err := svc.Grade(ctx, instructor, 8, 101, ""); !errors.As(err, &inputErr) {
		t.Fatalf("expected input error for grade 101, got %v", err)
	}
	other := domain.Identity{ID: 11, Role: domain.RoleInstructor}
	if _, err := svc.Grade(ctx, other, 8, 90, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	project, err := svc.Grade(ctx, instructor, 8, 90, " well done ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Status != domain.ProjectGraded || *project.Grade != 90 || *project.GradedBy != instructor.ID || project.GradedAt == nil {
		t.Fatalf("unexpected graded project %+v", project)
	}
	if project.Feedback != "well done" || repo.graded == nil {
		t.Fatalf("grade not persisted: %+v", repo.graded)
	}

	if _, err := svc.GetProject(ctx, outsider, 8); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other students cannot read submissions, got %v", err)
	}
	if _, err := svc.GetProject(ctx, learner, 8); err != nil {
		t.Fatalf("author reads own submission: %v", err)
	}
}
