package postgres

import (
	"context"

	"github.com/splax/learnhub/internal/domain"
)

// StudentDashboard aggregates a learner's activity.
func (r *Repository) StudentDashboard(ctx context.Context, userID int64) (*domain.StudentDashboard, error) {
	const query = `SELECT
			(SELECT COUNT(1) FROM enrollments WHERE user_id = $1),
			(SELECT COUNT(1) FROM enrollments WHERE user_id = $1 AND status = 'completed'),
			(SELECT COALESCE(AVG(progress), 0)::float8 FROM enrollments WHERE user_id = $1),
			(SELECT COALESCE(AVG(percentage), 0)::float8 FROM quiz_attempts WHERE user_id = $1),
			(SELECT COUNT(1) FROM certificates WHERE user_id = $1),
			(SELECT COALESCE(SUM(a.points), 0) FROM user_achievements ua INNER JOIN achievements a ON a.id = ua.achievement_id WHERE ua.user_id = $1),
			(SELECT COUNT(1) FROM lesson_completions WHERE user_id = $1)`
	var d domain.StudentDashboard
	err := r.pool.QueryRow(ctx, query, userID).
		Scan(&d.EnrolledCourses, &d.CompletedCourses, &d.AverageProgress, &d.AverageQuizScore, &d.Certificates, &d.AchievementPoints, &d.LessonsCompleted)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InstructorDashboard aggregates the courses taught by an instructor.
func (r *Repository) InstructorDashboard(ctx context.Context, instructorID int64) (*domain.InstructorDashboard, error) {
	const query = `SELECT
			(SELECT COUNT(1) FROM courses WHERE instructor_id = $1),
			(SELECT COUNT(1) FROM courses WHERE instructor_id = $1 AND is_published),
			(SELECT COUNT(DISTINCT e.user_id) FROM enrollments e INNER JOIN courses c ON c.id = e.course_id WHERE c.instructor_id = $1),
			(SELECT COALESCE(AVG(e.progress), 0)::float8 FROM enrollments e INNER JOIN courses c ON c.id = e.course_id WHERE c.instructor_id = $1),
			(SELECT COUNT(1) FROM projects p INNER JOIN courses c ON c.id = p.course_id WHERE c.instructor_id = $1 AND p.status = 'submitted')`
	var d domain.InstructorDashboard
	err := r.pool.QueryRow(ctx, query, instructorID).
		Scan(&d.Courses, &d.PublishedCourses, &d.TotalStudents, &d.AverageCompletion, &d.PendingGrading)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CourseAnalytics aggregates enrolment and quiz activity of one course.
func (r *Repository) CourseAnalytics(ctx context.Context, courseID int64) (*domain.CourseAnalytics, error) {
	const query = `SELECT
			(SELECT COUNT(1) FROM enrollments WHERE course_id = $1),
			(SELECT COUNT(1) FROM enrollments WHERE course_id = $1 AND status = 'completed'),
			(SELECT COALESCE(AVG(progress), 0)::float8 FROM enrollments WHERE course_id = $1),
			(SELECT COALESCE(AVG(qa.percentage), 0)::float8 FROM quiz_attempts qa
				INNER JOIN quizzes q ON q.id = qa.quiz_id
				INNER JOIN lessons l ON l.id = q.lesson_id
				INNER JOIN modules m ON m.id = l.module_id
				WHERE m.course_id = $1),
			(SELECT COUNT(1) FROM quiz_attempts qa
				INNER JOIN quizzes q ON q.id = qa.quiz_id
				INNER JOIN lessons l ON l.id = q.lesson_id
				INNER JOIN modules m ON m.id = l.module_id
				WHERE m.course_id = $1)`
	a := domain.CourseAnalytics{CourseID: courseID}
	err := r.pool.QueryRow(ctx, query, courseID).
		Scan(&a.Enrollments, &a.Completions, &a.AverageProgress, &a.AverageQuizScore, &a.QuizAttempts)
	if err != nil {
		return nil, err
	}
	if a.Enrollments > 0 {
		a.CompletionRate = float64(a.Completions) * 100 / float64(a.Enrollments)
	}
	return &a, nil
}

// PlatformAnalytics aggregates platform-wide totals.
func (r *Repository) PlatformAnalytics(ctx context.Context) (*domain.PlatformAnalytics, error) {
	p := domain.PlatformAnalytics{UsersByRole: make(map[string]int)}

	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(1) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			role  string
			count int
		)
		if err := rows.Scan(&role, &count); err != nil {
			rows.Close()
			return nil, err
		}
		p.UsersByRole[role] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const query = `SELECT
			(SELECT COUNT(1) FROM users WHERE is_active),
			(SELECT COUNT(1) FROM courses),
			(SELECT COUNT(1) FROM courses WHERE is_published),
			(SELECT COUNT(1) FROM enrollments),
			(SELECT COUNT(1) FROM enrollments WHERE status = 'completed'),
			(SELECT COUNT(1) FROM certificates),
			(SELECT COUNT(1) FROM quiz_attempts)`
	err = r.pool.QueryRow(ctx, query).
		Scan(&p.ActiveUsers, &p.Courses, &p.PublishedCourses, &p.Enrollments, &p.Completions, &p.Certificates, &p.QuizAttempts)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
