package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/splax/learnhub/internal/domain"
)

const courseColumns = `id, instructor_id, title, description, category, level, thumbnail_url, is_published, is_featured, created_at, updated_at`

func scanCourse(row scanner) (*domain.Course, error) {
	var c domain.Course
	if err := row.Scan(&c.ID, &c.InstructorID, &c.Title, &c.Description, &c.Category, &c.Level, &c.ThumbnailURL, &c.IsPublished, &c.IsFeatured, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// CreateCourse inserts a course.
func (r *Repository) CreateCourse(ctx context.Context, course *domain.Course) error {
	const query = `INSERT INTO courses (instructor_id, title, description, category, level, thumbnail_url, is_published, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, course.InstructorID, course.Title, course.Description, course.Category, course.Level, course.ThumbnailURL, course.IsPublished, course.IsFeatured).
		Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	return mapErr(err)
}

// GetCourse fetches a course.
func (r *Repository) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.pool.QueryRow(ctx, query, id))
}

// ListCourses returns courses matching filter, newest first.
func (r *Repository) ListCourses(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	var (
		where []string
		args  []any
	)
	if filter.PublishedOnly {
		where = append(where, "is_published")
	}
	if filter.InstructorID > 0 {
		args = append(args, filter.InstructorID)
		where = append(where, fmt.Sprintf("instructor_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Level != "" {
		args = append(args, filter.Level)
		where = append(where, fmt.Sprintf("level = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	query := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitOrDefault(filter.Limit), max(filter.Offset, 0))
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return r.queryCourses(ctx, query, args...)
}

// ListFeaturedCourses returns published featured courses.
func (r *Repository) ListFeaturedCourses(ctx context.Context, limit int) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses
		WHERE is_published AND is_featured
		ORDER BY updated_at DESC LIMIT $1`
	return r.queryCourses(ctx, query, limitOrDefault(limit))
}

func (r *Repository) queryCourses(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// UpdateCourse persists editable course fields.
func (r *Repository) UpdateCourse(ctx context.Context, course *domain.Course) error {
	const query = `UPDATE courses
		SET title = $2, description = $3, category = $4, level = $5, thumbnail_url = $6, is_featured = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, course.ID, course.Title, course.Description, course.Category, course.Level, course.ThumbnailURL, course.IsFeatured).
		Scan(&course.UpdatedAt)
	return mapErr(err)
}

// SetCoursePublished toggles catalogue visibility.
func (r *Repository) SetCoursePublished(ctx context.Context, id int64, published bool) error {
	const query = `UPDATE courses SET is_published = $2, updated_at = now() WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id, published))
}

// DeleteCourse removes a course with its modules and lessons.
func (r *Repository) DeleteCourse(ctx context.Context, id int64) error {
	const query = `DELETE FROM courses WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

// ListCourseStudents returns the enrolment roster of a course.
func (r *Repository) ListCourseStudents(ctx context.Context, courseID int64) ([]domain.EnrolledStudent, error) {
	const query = `SELECT u.id, u.email, u.first_name, u.last_name, e.progress, e.status, e.enrolled_at
		FROM enrollments e
		INNER JOIN users u ON u.id = e.user_id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at DESC`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]domain.EnrolledStudent, 0)
	for rows.Next() {
		var s domain.EnrolledStudent
		if err := rows.Scan(&s.UserID, &s.Email, &s.FirstName, &s.LastName, &s.Progress, &s.Status, &s.EnrolledAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// CreateModule inserts a module.
func (r *Repository) CreateModule(ctx context.Context, module *domain.Module) error {
	const query = `INSERT INTO modules (course_id, title, description, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, module.CourseID, module.Title, module.Description, module.Position).
		Scan(&module.ID, &module.CreatedAt)
	return mapErr(err)
}

// GetModule fetches a module.
func (r *Repository) GetModule(ctx context.Context, id int64) (*domain.Module, error) {
	const query = `SELECT id, course_id, title, description, position, created_at FROM modules WHERE id = $1`
	var m domain.Module
	if err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Position, &m.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// ListModules returns a course's modules in position order.
func (r *Repository) ListModules(ctx context.Context, courseID int64) ([]domain.Module, error) {
	const query = `SELECT id, course_id, title, description, position, created_at
		FROM modules WHERE course_id = $1 ORDER BY position, id`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]domain.Module, 0)
	for rows.Next() {
		var m domain.Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Position, &m.CreatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// UpdateModule persists module fields.
func (r *Repository) UpdateModule(ctx context.Context, module *domain.Module) error {
	const query = `UPDATE modules SET title = $2, description = $3, position = $4 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, module.ID, module.Title, module.Description, module.Position))
}

// DeleteModule removes a module and its lessons.
func (r *Repository) DeleteModule(ctx context.Context, id int64) error {
	const query = `DELETE FROM modules WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

const lessonColumns = `id, module_id, title, content, video_url, duration_minutes, position, created_at`

func scanLesson(row scanner) (*domain.Lesson, error) {
	var l domain.Lesson
	if err := row.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.VideoURL, &l.DurationMinutes, &l.Position, &l.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

// CreateLesson inserts a lesson.
func (r *Repository) CreateLesson(ctx context.Context, lesson *domain.Lesson) error {
	const query = `INSERT INTO lessons (module_id, title, content, video_url, duration_minutes, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, lesson.ModuleID, lesson.Title, lesson.Content, lesson.VideoURL, lesson.DurationMinutes, lesson.Position).
		Scan(&lesson.ID, &lesson.CreatedAt)
	return mapErr(err)
}

// GetLesson fetches a lesson.
func (r *Repository) GetLesson(ctx context.Context, id int64) (*domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	return scanLesson(r.pool.QueryRow(ctx, query, id))
}

// ListLessons returns a module's lessons in position order.
func (r *Repository) ListLessons(ctx context.Context, moduleID int64) ([]domain.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE module_id = $1 ORDER BY position, id`
	rows, err := r.pool.Query(ctx, query, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]domain.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, *l)
	}
	return lessons, rows.Err()
}

// UpdateLesson persists lesson fields.
func (r *Repository) UpdateLesson(ctx context.Context, lesson *domain.Lesson) error {
	const query = `UPDATE lessons
		SET title = $2, content = $3, video_url = $4, duration_minutes = $5, position = $6
		WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, lesson.ID, lesson.Title, lesson.Content, lesson.VideoURL, lesson.DurationMinutes, lesson.Position))
}

// DeleteLesson removes a lesson.
func (r *Repository) DeleteLesson(ctx context.Context, id int64) error {
	const query = `DELETE FROM lessons WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

// LessonCourseID resolves the course a lesson belongs to.
func (r *Repository) LessonCourseID(ctx context.Context, lessonID int64) (int64, error) {
	const query = `SELECT m.course_id FROM lessons l INNER JOIN modules m ON m.id = l.module_id WHERE l.id = $1`
	var courseID int64
	if err := r.pool.QueryRow(ctx, query, lessonID).Scan(&courseID); err != nil {
		return 0, mapErr(err)
	}
	return courseID, nil
}

// CountCourseLessons counts lessons across all modules of a course.
func (r *Repository) CountCourseLessons(ctx context.Context, courseID int64) (int, error) {
	const query = `SELECT COUNT(1) FROM lessons l INNER JOIN modules m ON m.id = l.module_id WHERE m.course_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkLessonComplete records a completion and reports whether it was new.
func (r *Repository) MarkLessonComplete(ctx context.Context, userID, lessonID int64, at time.Time) (bool, error) {
	const query = `INSERT INTO lesson_completions (user_id, lesson_id, completed_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, lesson_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, query, userID, lessonID, at)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountCompletedLessons counts a user's completed lessons within a course.
func (r *Repository) CountCompletedLessons(ctx context.Context, userID, courseID int64) (int, error) {
	const query = `SELECT COUNT(1)
		FROM lesson_completions lc
		INNER JOIN lessons l ON l.id = lc.lesson_id
		INNER JOIN modules m ON m.id = l.module_id
		WHERE lc.user_id = $1 AND m.course_id = $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, courseID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
