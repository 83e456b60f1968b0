package postgres

import (
	"context"

	"github.com/splax/learnhub/internal/domain"
)

const enrollmentColumns = `e.id, e.user_id, e.course_id, c.title, e.status, e.progress, e.enrolled_at, e.completed_at`

func scanEnrollment(row scanner) (*domain.Enrollment, error) {
	var e domain.Enrollment
	if err := row.Scan(&e.ID, &e.UserID, &e.CourseID, &e.CourseTitle, &e.Status, &e.Progress, &e.EnrolledAt, &e.CompletedAt); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

// CreateEnrollment inserts an enrollment; a second enrollment in the same course is a conflict.
func (r *Repository) CreateEnrollment(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `INSERT INTO enrollments (user_id, course_id, status, progress)
		VALUES ($1, $2, $3, $4)
		RETURNING id, enrolled_at`
	err := r.pool.QueryRow(ctx, query, enrollment.UserID, enrollment.CourseID, enrollment.Status, enrollment.Progress).
		Scan(&enrollment.ID, &enrollment.EnrolledAt)
	return mapErr(err)
}

// GetEnrollment fetches an enrollment.
func (r *Repository) GetEnrollment(ctx context.Context, id int64) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e INNER JOIN courses c ON c.id = e.course_id WHERE e.id = $1`
	return scanEnrollment(r.pool.QueryRow(ctx, query, id))
}

// GetEnrollmentByUserCourse fetches the enrollment of a user in a course.
func (r *Repository) GetEnrollmentByUserCourse(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e INNER JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1 AND e.course_id = $2`
	return scanEnrollment(r.pool.QueryRow(ctx, query, userID, courseID))
}

// ListEnrollments returns a user's enrollments, newest first.
func (r *Repository) ListEnrollments(ctx context.Context, userID int64) ([]domain.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e INNER JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1 ORDER BY e.enrolled_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]domain.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

// UpdateEnrollmentProgress persists progress, status and completion time.
func (r *Repository) UpdateEnrollmentProgress(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `UPDATE enrollments SET progress = $2, status = $3, completed_at = $4 WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, enrollment.ID, enrollment.Progress, enrollment.Status, enrollment.CompletedAt))
}

// DeleteEnrollment removes an enrollment.
func (r *Repository) DeleteEnrollment(ctx context.Context, id int64) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

const certificateQuery = `SELECT ct.id, ct.user_id, ct.course_id, c.title, trim(u.first_name || ' ' || u.last_name), ct.code, ct.issued_at
	FROM certificates ct
	INNER JOIN courses c ON c.id = ct.course_id
	INNER JOIN users u ON u.id = ct.user_id`

func scanCertificate(row scanner) (*domain.Certificate, error) {
	var c domain.Certificate
	if err := row.Scan(&c.ID, &c.UserID, &c.CourseID, &c.CourseTitle, &c.HolderName, &c.Code, &c.IssuedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// CreateCertificate inserts a certificate; codes and (user, course) pairs are unique.
func (r *Repository) CreateCertificate(ctx context.Context, certificate *domain.Certificate) error {
	const query = `INSERT INTO certificates (user_id, course_id, code, issued_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.pool.QueryRow(ctx, query, certificate.UserID, certificate.CourseID, certificate.Code, certificate.IssuedAt).
		Scan(&certificate.ID)
	return mapErr(err)
}

// GetCertificate fetches a certificate.
func (r *Repository) GetCertificate(ctx context.Context, id int64) (*domain.Certificate, error) {
	return scanCertificate(r.pool.QueryRow(ctx, certificateQuery+` WHERE ct.id = $1`, id))
}

// GetCertificateByCode looks a certificate up by its public code.
func (r *Repository) GetCertificateByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	return scanCertificate(r.pool.QueryRow(ctx, certificateQuery+` WHERE ct.code = $1`, code))
}

// GetCertificateByUserCourse fetches the certificate a user earned for a course.
func (r *Repository) GetCertificateByUserCourse(ctx context.Context, userID, courseID int64) (*domain.Certificate, error) {
	return scanCertificate(r.pool.QueryRow(ctx, certificateQuery+` WHERE ct.user_id = $1 AND ct.course_id = $2`, userID, courseID))
}

// ListCertificates returns a user's certificates, newest first.
func (r *Repository) ListCertificates(ctx context.Context, userID int64) ([]domain.Certificate, error) {
	rows, err := r.pool.Query(ctx, certificateQuery+` WHERE ct.user_id = $1 ORDER BY ct.issued_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certificates := make([]domain.Certificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certificates = append(certificates, *c)
	}
	return certificates, rows.Err()
}

// CreateNote inserts a note.
func (r *Repository) CreateNote(ctx context.Context, note *domain.Note) error {
	const query = `INSERT INTO notes (user_id, lesson_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, note.UserID, note.LessonID, note.Content).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	return mapErr(err)
}

// GetNote fetches a note.
func (r *Repository) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	const query = `SELECT id, user_id, lesson_id, content, created_at, updated_at FROM notes WHERE id = $1`
	var n domain.Note
	if err := r.pool.QueryRow(ctx, query, id).Scan(&n.ID, &n.UserID, &n.LessonID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &n, nil
}

// ListNotes returns a user's notes on a lesson.
func (r *Repository) ListNotes(ctx context.Context, userID, lessonID int64) ([]domain.Note, error) {
	const query = `SELECT id, user_id, lesson_id, content, created_at, updated_at
		FROM notes WHERE user_id = $1 AND lesson_id = $2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, userID, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.LessonID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote replaces a note's content.
func (r *Repository) UpdateNote(ctx context.Context, note *domain.Note) error {
	const query = `UPDATE notes SET content = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`
	return mapErr(r.pool.QueryRow(ctx, query, note.ID, note.Content).Scan(&note.UpdatedAt))
}

// DeleteNote removes a note.
func (r *Repository) DeleteNote(ctx context.Context, id int64) error {
	const query = `DELETE FROM notes WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

// CreateBookmark inserts a bookmark; bookmarking the same lesson twice is a conflict.
func (r *Repository) CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error {
	const query = `INSERT INTO bookmarks (user_id, lesson_id)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, bookmark.UserID, bookmark.LessonID).
		Scan(&bookmark.ID, &bookmark.CreatedAt)
	return mapErr(err)
}

// GetBookmark fetches a bookmark.
func (r *Repository) GetBookmark(ctx context.Context, id int64) (*domain.Bookmark, error) {
	const query = `SELECT b.id, b.user_id, b.lesson_id, l.title, b.created_at
		FROM bookmarks b INNER JOIN lessons l ON l.id = b.lesson_id WHERE b.id = $1`
	var b domain.Bookmark
	if err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.UserID, &b.LessonID, &b.LessonTitle, &b.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// ListBookmarks returns a user's bookmarks, newest first.
func (r *Repository) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	const query = `SELECT b.id, b.user_id, b.lesson_id, l.title, b.created_at
		FROM bookmarks b INNER JOIN lessons l ON l.id = b.lesson_id
		WHERE b.user_id = $1 ORDER BY b.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.LessonID, &b.LessonTitle, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// DeleteBookmark removes a bookmark.
func (r *Repository) DeleteBookmark(ctx context.Context, id int64) error {
	const query = `DELETE FROM bookmarks WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}

// CreateUpload records stored file metadata.
func (r *Repository) CreateUpload(ctx context.Context, upload *domain.Upload) error {
	const query = `INSERT INTO uploads (user_id, original_name, stored_name, content_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, upload.UserID, upload.OriginalName, upload.StoredName, upload.ContentType, upload.Size).
		Scan(&upload.ID, &upload.CreatedAt)
	return mapErr(err)
}

// GetUpload fetches upload metadata.
func (r *Repository) GetUpload(ctx context.Context, id int64) (*domain.Upload, error) {
	const query = `SELECT id, user_id, original_name, stored_name, content_type, size, created_at FROM uploads WHERE id = $1`
	var u domain.Upload
	if err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.UserID, &u.OriginalName, &u.StoredName, &u.ContentType, &u.Size, &u.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// DeleteUpload removes upload metadata.
func (r *Repository) DeleteUpload(ctx context.Context, id int64) error {
	const query = `DELETE FROM uploads WHERE id = $1`
	return affected(r.pool.Exec(ctx, query, id))
}
