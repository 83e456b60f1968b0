package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/splax/learnhub/internal/domain"
)

const quizColumns = `id, lesson_id, title, description, passing_score, time_limit_minutes, created_at`

func scanQuiz(row scanner) (*domain.Quiz, error) {
	var q domain.Quiz
	if err := row.Scan(&q.ID, &q.LessonID, &q.Title, &q.Description, &q.PassingScore, &q.TimeLimitMinutes, &q.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &q, nil
}

// CreateQuiz inserts a quiz.
func (r *Repository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	const query = `INSERT INTO quizzes (lesson_id, title, description, passing_score, time_limit_minutes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, quiz.LessonID, quiz.Title, quiz.Description, quiz.PassingScore, quiz.TimeLimitMinutes).
		Scan(&quiz.ID, &quiz.CreatedAt)
	return mapErr(err)
}

// GetQuiz fetches a quiz.
func (r *Repository) GetQuiz(ctx context.Context, id int64) (*domain.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`
	return scanQuiz(r.pool.QueryRow(ctx, query, id))
}

// ListQuizzes returns the quizzes attached to a lesson.
func (r *Repository) ListQuizzes(ctx context.Context, lessonID int64) ([]domain.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE lesson_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// UpdateQuiz persists quiz fields.
func (r *Repository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	const query = `UPDATE quizzes SET title = $2, description = $3, passing_score = $4, time_limit_minutes = $5 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, quiz.ID, quiz.Title, quiz.Description, quiz.PassingScore, quiz.TimeLimitMinutes))
}

// DeleteQuiz removes a quiz, its questions and attempts.
func (r *Repository) DeleteQuiz(ctx context.Context, id int64) error {
	const query = `DELETE FROM quizzes WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

// QuizCourseID resolves the course a quiz belongs to.
func (r *Repository) QuizCourseID(ctx context.Context, quizID int64) (int64, error) {
	const query = `SELECT m.course_id
		FROM quizzes q
		INNER JOIN lessons l ON l.id = q.lesson_id
		INNER JOIN modules m ON m.id = l.module_id
		WHERE q.id = $1`
	var courseID int64
	if err := r.pool.QueryRow(ctx, query, quizID).Scan(&courseID); err != nil {
		return 0, mapErr(err)
	}
	return courseID, nil
}

func scanQuestion(row scanner) (*domain.Question, error) {
	var (
		q       domain.Question
		options []byte
	)
	if err := row.Scan(&q.ID, &q.QuizID, &q.Prompt, &options, &q.CorrectOption, &q.Points, &q.Position); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options of question %d: %w", q.ID, err)
	}
	return &q, nil
}

// CreateQuestion inserts a question.
func (r *Repository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return err
	}
	const query = `INSERT INTO questions (quiz_id, prompt, options, correct_option, points, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err = r.pool.QueryRow(ctx, query, question.QuizID, question.Prompt, string(options), question.CorrectOption, question.Points, question.Position).
		Scan(&question.ID)
	return mapErr(err)
}

// GetQuestion fetches a question.
func (r *Repository) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	const query = `SELECT id, quiz_id, prompt, options, correct_option, points, position FROM questions WHERE id = $1`
	return scanQuestion(r.pool.QueryRow(ctx, query, id))
}

// ListQuestions returns a quiz's questions in position order.
func (r *Repository) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	const query = `SELECT id, quiz_id, prompt, options, correct_option, points, position
		FROM questions WHERE quiz_id = $1 ORDER BY position, id`
	rows, err := r.pool.Query(ctx, query, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// UpdateQuestion persists question fields.
func (r *Repository) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return err
	}
	const query = `UPDATE questions SET prompt = $2, options = $3, correct_option = $4, points = $5, position = $6 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, question.ID, question.Prompt, string(options), question.CorrectOption, question.Points, question.Position))
}

// DeleteQuestion removes a question.
func (r *Repository) DeleteQuestion(ctx context.Context, id int64) error {
	const query = `DELETE FROM questions WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

// CreateAttempt stores a scored submission.
func (r *Repository) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return err
	}
	const query = `INSERT INTO quiz_attempts (quiz_id, user_id, score, max_score, percentage, passed, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err = r.pool.QueryRow(ctx, query, attempt.QuizID, attempt.UserID, attempt.Score, attempt.MaxScore, attempt.Percentage, attempt.Passed, string(answers), attempt.SubmittedAt).
		Scan(&attempt.ID)
	return mapErr(err)
}

// ListAttempts returns attempts for a quiz, newest first. userID 0 lists every user.
func (r *Repository) ListAttempts(ctx context.Context, quizID, userID int64) ([]domain.QuizAttempt, error) {
	const query = `SELECT id, quiz_id, user_id, score, max_score, percentage, passed, answers, submitted_at
		FROM quiz_attempts
		WHERE quiz_id = $1 AND ($2::bigint = 0 OR user_id = $2)
		ORDER BY submitted_at DESC`
	rows, err := r.pool.Query(ctx, query, quizID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]domain.QuizAttempt, 0)
	for rows.Next() {
		var (
			a       domain.QuizAttempt
			answers []byte
		)
		if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Score, &a.MaxScore, &a.Percentage, &a.Passed, &answers, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of attempt %d: %w", a.ID, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// QuizStats aggregates every attempt of a quiz.
func (r *Repository) QuizStats(ctx context.Context, quizID int64) (*domain.QuizStats, error) {
	const query = `SELECT COUNT(1),
			COUNT(DISTINCT user_id),
			COALESCE(AVG(percentage), 0)::float8,
			COALESCE(MAX(percentage), 0)::float8,
			COALESCE(MIN(percentage), 0)::float8,
			COALESCE(AVG(CASE WHEN passed THEN 100.0 ELSE 0 END), 0)::float8
		FROM quiz_attempts WHERE quiz_id = $1`
	stats := domain.QuizStats{QuizID: quizID}
	err := r.pool.QueryRow(ctx, query, quizID).
		Scan(&stats.Attempts, &stats.UniqueStudents, &stats.AverageScore, &stats.HighestScore, &stats.LowestScore, &stats.PassRate)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

const projectColumns = `p.id, p.user_id, p.course_id, p.title, p.description, p.repo_url, p.status, p.grade, p.feedback, p.graded_by, p.submitted_at, p.graded_at`

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.Title, &p.Description, &p.RepoURL, &p.Status, &p.Grade, &p.Feedback, &p.GradedBy, &p.SubmittedAt, &p.GradedAt); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// CreateProject stores a submission.
func (r *Repository) CreateProject(ctx context.Context, project *domain.Project) error {
	const query = `INSERT INTO projects (user_id, course_id, title, description, repo_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, submitted_at`
	err := r.pool.QueryRow(ctx, query, project.UserID, project.CourseID, project.Title, project.Description, project.RepoURL, project.Status).
		Scan(&project.ID, &project.SubmittedAt)
	return mapErr(err)
}

// GetProject fetches a submission.
func (r *Repository) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

// ListProjects returns submissions of a user, or all when userID is 0.
func (r *Repository) ListProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p
		WHERE ($1::bigint = 0 OR p.user_id = $1)
		ORDER BY p.submitted_at DESC`
	return r.queryProjects(ctx, query, userID)
}

// ListPendingProjects returns ungraded submissions, oldest first, for courses
// taught by instructorID, or every course when instructorID is 0.
func (r *Repository) ListPendingProjects(ctx context.Context, instructorID int64) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p
		INNER JOIN courses c ON c.id = p.course_id
		WHERE p.status = 'submitted' AND ($1::bigint = 0 OR c.instructor_id = $1)
		ORDER BY p.submitted_at`
	return r.queryProjects(ctx, query, instructorID)
}

func (r *Repository) queryProjects(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject persists the student-editable fields.
func (r *Repository) UpdateProject(ctx context.Context, project *domain.Project) error {
	const query = `UPDATE projects SET title = $2, description = $3, repo_url = $4 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, project.ID, project.Title, project.Description, project.RepoURL))
}

// GradeProject stores grade, feedback and grader.
func (r *Repository) GradeProject(ctx context.Context, project *domain.Project) error {
	const query = `UPDATE projects
		SET status = $2, grade = $3, feedback = $4, graded_by = $5, graded_at = $6
		WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, project.ID, project.Status, project.Grade, project.Feedback, project.GradedBy, project.GradedAt))
}

// DeleteProject removes a submission.
func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	const query = `DELETE FROM projects WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}
