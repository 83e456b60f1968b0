package domain

import "time"

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

// Enrollment links a student to a course and tracks progress in percent.
type Enrollment struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	CourseID    int64      `json:"course_id"`
	CourseTitle string     `json:"course_title,omitempty"`
	Status      string     `json:"status"`
	Progress    float64    `json:"progress"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Certificate proves completion of a course. Code is publicly verifiable.
type Certificate struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CourseID    int64     `json:"course_id"`
	CourseTitle string    `json:"course_title,omitempty"`
	HolderName  string    `json:"holder_name,omitempty"`
	Code        string    `json:"code"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Note is a private annotation on a lesson.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	LessonID  int64     `json:"lesson_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookmark saves a lesson for later.
type Bookmark struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	LessonID    int64     `json:"lesson_id"`
	LessonTitle string    `json:"lesson_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Upload is metadata of a stored file.
type Upload struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}
