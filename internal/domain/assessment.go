package domain

import "time"

// Quiz is attached to a lesson and scored automatically.
type Quiz struct {
	ID               int64     `json:"id"`
	LessonID         int64     `json:"lesson_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PassingScore     int       `json:"passing_score"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

// Question is a multiple-choice question. CorrectOption indexes Options.
type Question struct {
	ID            int64    `json:"id"`
	QuizID        int64    `json:"quiz_id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Points        int      `json:"points"`
	Position      int      `json:"position"`
}

// PublicQuestion is a question as learners see it, without the answer.
type PublicQuestion struct {
	ID       int64    `json:"id"`
	QuizID   int64    `json:"quiz_id"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
	Position int      `json:"position"`
}

// Public strips the correct option.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:       q.ID,
		QuizID:   q.QuizID,
		Prompt:   q.Prompt,
		Options:  q.Options,
		Points:   q.Points,
		Position: q.Position,
	}
}

// QuizAttempt records one scored submission.
type QuizAttempt struct {
	ID          int64         `json:"id"`
	QuizID      int64         `json:"quiz_id"`
	UserID      int64         `json:"user_id"`
	Score       int           `json:"score"`
	MaxScore    int           `json:"max_score"`
	Percentage  float64       `json:"percentage"`
	Passed      bool          `json:"passed"`
	Answers     map[int64]int `json:"answers"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// QuizStats aggregates attempts for one quiz.
type QuizStats struct {
	QuizID         int64   `json:"quiz_id"`
	Attempts       int     `json:"attempts"`
	UniqueStudents int     `json:"unique_students"`
	AverageScore   float64 `json:"average_percentage"`
	HighestScore   float64 `json:"highest_percentage"`
	LowestScore    float64 `json:"lowest_percentage"`
	PassRate       float64 `json:"pass_rate"`
}

// Project statuses.
const (
	ProjectSubmitted = "submitted"
	ProjectGraded    = "graded"
)

// Project is a student submission graded by an instructor.
type Project struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	CourseID    int64      `json:"course_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	RepoURL     string     `json:"repo_url"`
	Status      string     `json:"status"`
	Grade       *int       `json:"grade,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
	GradedBy    *int64     `json:"graded_by,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
}
