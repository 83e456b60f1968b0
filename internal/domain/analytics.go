package domain

// StudentDashboard summarises a learner's activity.
type StudentDashboard struct {
	EnrolledCourses   int     `json:"enrolled_courses"`
	CompletedCourses  int     `json:"completed_courses"`
	AverageProgress   float64 `json:"average_progress"`
	AverageQuizScore  float64 `json:"average_quiz_score"`
	Certificates      int     `json:"certificates"`
	AchievementPoints int     `json:"achievement_points"`
	LessonsCompleted  int     `json:"lessons_completed"`
}

// InstructorDashboard summarises an instructor's courses.
type InstructorDashboard struct {
	Courses           int     `json:"courses"`
	PublishedCourses  int     `json:"published_courses"`
	TotalStudents     int     `json:"total_students"`
	AverageCompletion float64 `json:"average_completion"`
	PendingGrading    int     `json:"pending_grading"`
}

// CourseAnalytics aggregates engagement for one course.
type CourseAnalytics struct {
	CourseID         int64   `json:"course_id"`
	Enrollments      int     `json:"enrollments"`
	Completions      int     `json:"completions"`
	CompletionRate   float64 `json:"completion_rate"`
	AverageProgress  float64 `json:"average_progress"`
	AverageQuizScore float64 `json:"average_quiz_score"`
	QuizAttempts     int     `json:"quiz_attempts"`
}

// PlatformAnalytics is the administrator overview.
type PlatformAnalytics struct {
	UsersByRole      map[string]int `json:"users_by_role"`
	ActiveUsers      int            `json:"active_users"`
	Courses          int            `json:"courses"`
	PublishedCourses int            `json:"published_courses"`
	Enrollments      int            `json:"enrollments"`
	Completions      int            `json:"completions"`
	Certificates     int            `json:"certificates"`
	QuizAttempts     int            `json:"quiz_attempts"`
}
