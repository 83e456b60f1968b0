package assessment

import (
	"context"
	"strings"

	"github.com/splax/learnhub/internal/domain"
)

// QuizInput holds editable quiz fields.
type QuizInput struct {
	Title            string
	Description      string
	PassingScore     *int
	TimeLimitMinutes int
}

// QuestionInput holds editable question fields.
type QuestionInput struct {
	Prompt        string
	Options       []string
	CorrectOption int
	Points        int
	Position      int
}

// QuizDetail is a quiz with its questions as learners see them.
type QuizDetail struct {
	domain.Quiz
	Questions []domain.PublicQuestion `json:"questions"`
}

// ListQuizzes returns the quizzes of a visible lesson.
func (s Service) ListQuizzes(ctx context.Context, caller domain.Identity, lessonID int64) ([]domain.Quiz, error) {
	if err := s.guard.EnsureLessonVisible(ctx, caller, lessonID); err != nil {
		return nil, err
	}
	return s.repo.ListQuizzes(ctx, lessonID)
}

// CreateQuiz attaches a quiz to a lesson of an owned course.
func (s Service) CreateQuiz(ctx context.Context, caller domain.Identity, lessonID int64, input QuizInput) (*domain.Quiz, error) {
	if err := s.guard.EnsureLessonOwner(ctx, caller, lessonID); err != nil {
		return nil, err
	}
	quiz := &domain.Quiz{LessonID: lessonID, PassingScore: DefaultPassingScore}
	if err := applyQuiz(quiz, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	s.logger.Info("quiz created", "quiz_id", quiz.ID, "lesson_id", lessonID)
	return quiz, nil
}

// GetQuiz returns a quiz of a visible course with answer-free questions.
func (s Service) GetQuiz(ctx context.Context, caller domain.Identity, id int64) (*QuizDetail, error) {
	quiz, err := s.visibleQuiz(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.repo.ListQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &QuizDetail{Quiz: *quiz, Questions: make([]domain.PublicQuestion, 0, len(questions))}
	for _, q := range questions {
		detail.Questions = append(detail.Questions, q.Public())
	}
	return detail, nil
}

// UpdateQuiz edits a quiz of an owned course.
func (s Service) UpdateQuiz(ctx context.Context, caller domain.Identity, id int64, input QuizInput) (*domain.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := applyQuiz(quiz, input); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz of an owned course.
func (s Service) DeleteQuiz(ctx context.Context, caller domain.Identity, id int64) error {
	if _, err := s.ownedQuiz(ctx, caller, id); err != nil {
		return err
	}
	return s.repo.DeleteQuiz(ctx, id)
}

// Questions lists the questions of a quiz. The boolean reports whether caller
// manages the course and may see the correct options.
func (s Service) Questions(ctx context.Context, caller domain.Identity, quizID int64) ([]domain.Question, bool, error) {
	if _, err := s.visibleQuiz(ctx, caller, quizID); err != nil {
		return nil, false, err
	}
	courseID, err := s.repo.QuizCourseID(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	reveal, err := s.manages(ctx, caller, courseID)
	if err != nil {
		return nil, false, err
	}
	questions, err := s.repo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, false, err
	}
	return questions, reveal, nil
}

// CreateQuestion adds a question to a quiz of an owned course.
func (s Service) CreateQuestion(ctx context.Context, caller domain.Identity, quizID int64, input QuestionInput) (*domain.Question, error) {
	if _, err := s.ownedQuiz(ctx, caller, quizID); err != nil {
		return nil, err
	}
	question := &domain.Question{QuizID: quizID}
	if err := applyQuestion(question, input); err != nil {
		return nil, err
	}
	if err := s.repo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// UpdateQuestion edits a question of an owned course.
func (s Service) UpdateQuestion(ctx context.Context, caller domain.Identity, id int64, input QuestionInput) (*domain.Question, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedQuiz(ctx, caller, question.QuizID); err != nil {
		return nil, err
	}
	if err := applyQuestion(question, input); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion removes a question of an owned course.
func (s Service) DeleteQuestion(ctx context.Context, caller domain.Identity, id int64) error {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.ownedQuiz(ctx, caller, question.QuizID); err != nil {
		return err
	}
	return s.repo.DeleteQuestion(ctx, id)
}

// Submit scores answers against the quiz and records the attempt. Students
// must be enrolled in the course.
func (s Service) Submit(ctx context.Context, caller domain.Identity, quizID int64, answers map[int64]int) (*domain.QuizAttempt, error) {
	quiz, err := s.visibleQuiz(ctx, caller, quizID)
	if err != nil {
		return nil, err
	}
	courseID, err := s.repo.QuizCourseID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, caller, courseID); err != nil {
		return nil, err
	}
	questions, err := s.repo.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.Invalid("quiz has no questions")
	}

	result := Score(questions, answers)
	attempt := &domain.QuizAttempt{
		QuizID:      quizID,
		UserID:      caller.ID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage,
		Passed:      Passed(result.Percentage, quiz.PassingScore),
		Answers:     answers,
		SubmittedAt: s.now().UTC(),
	}
	if attempt.Answers == nil {
		attempt.Answers = map[int64]int{}
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}
	s.logger.Info("quiz submitted", "quiz_id", quizID, "user_id", caller.ID, "percentage", attempt.Percentage, "passed", attempt.Passed)
	if attempt.Passed {
		s.checkAchievements(ctx, caller.ID)
	}
	return attempt, nil
}

// Attempts returns the caller's attempts, or every attempt for course managers.
func (s Service) Attempts(ctx context.Context, caller domain.Identity, quizID int64) ([]domain.QuizAttempt, error) {
	if _, err := s.visibleQuiz(ctx, caller, quizID); err != nil {
		return nil, err
	}
	courseID, err := s.repo.QuizCourseID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	all, err := s.manages(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}
	userID := caller.ID
	if all {
		userID = 0
	}
	return s.repo.ListAttempts(ctx, quizID, userID)
}

// Stats aggregates the attempts of a quiz in an owned course.
func (s Service) Stats(ctx context.Context, caller domain.Identity, quizID int64) (*domain.QuizStats, error) {
	if _, err := s.ownedQuiz(ctx, caller, quizID); err != nil {
		return nil, err
	}
	return s.repo.QuizStats(ctx, quizID)
}

func (s Service) visibleQuiz(ctx context.Context, caller domain.Identity, id int64) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnsureLessonVisible(ctx, caller, quiz.LessonID); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s Service) ownedQuiz(ctx context.Context, caller domain.Identity, id int64) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnsureLessonOwner(ctx, caller, quiz.LessonID); err != nil {
		return nil, err
	}
	return quiz, nil
}

func applyQuiz(quiz *domain.Quiz, input QuizInput) error {
	if input.PassingScore != nil {
		if *input.PassingScore < 0 || *input.PassingScore > 100 {
			return domain.Invalid("passing score must be between 0 and 100")
		}
		quiz.PassingScore = *input.PassingScore
	}
	if input.TimeLimitMinutes < 0 {
		return domain.Invalid("time limit cannot be negative")
	}
	quiz.Title = strings.TrimSpace(input.Title)
	quiz.Description = input.Description
	quiz.TimeLimitMinutes = input.TimeLimitMinutes
	return nil
}

func applyQuestion(q *domain.Question, input QuestionInput) error {
	options := make([]string, 0, len(input.Options))
	for _, o := range input.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return domain.Invalid("a question needs at least two options")
	}
	if len(options) != len(input.Options) {
		return domain.Invalid("options cannot be blank")
	}
	if input.CorrectOption < 0 || input.CorrectOption >= len(options) {
		return domain.Invalid("correct option %d is out of range", input.CorrectOption)
	}
	q.Prompt = strings.TrimSpace(input.Prompt)
	q.Options = options
	q.CorrectOption = input.CorrectOption
	q.Points = max(input.Points, 1)
	q.Position = input.Position
	return nil
}
