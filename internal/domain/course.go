package domain

import "time"

// Course is the top-level unit of the catalogue.
type Course struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Level        string    `json:"level"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsPublished  bool      `json:"is_published"`
	IsFeatured   bool      `json:"is_featured"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CourseFilter narrows catalogue listings.
type CourseFilter struct {
	Category      string
	Level         string
	Search        string
	InstructorID  int64
	PublishedOnly bool
	Limit         int
	Offset        int
}

// Module groups lessons inside a course.
type Module struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lesson is a single unit of content.
type Lesson struct {
	ID              int64     `json:"id"`
	ModuleID        int64     `json:"module_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	VideoURL        string    `json:"video_url"`
	DurationMinutes int       `json:"duration_minutes"`
	Position        int       `json:"position"`
	CreatedAt       time.Time `json:"created_at"`
}

// EnrolledStudent is a course roster entry.
type EnrolledStudent struct {
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Progress   float64   `json:"progress"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
