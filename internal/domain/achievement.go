package domain

import "time"

// Achievement criteria evaluated against LearnerStats.
const (
	CriteriaLessonsCompleted   = "lessons_completed"
	CriteriaCoursesCompleted   = "courses_completed"
	CriteriaQuizzesPassed      = "quizzes_passed"
	CriteriaPerfectQuizzes     = "perfect_quizzes"
	CriteriaCertificatesEarned = "certificates_earned"
)

// Achievement is an unlockable badge.
type Achievement struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Icon        string     `json:"icon"`
	Criteria    string     `json:"criteria"`
	Threshold   int        `json:"threshold"`
	Points      int        `json:"points"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// AchievementCategory summarises one category of the catalogue.
type AchievementCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LearnerStats are the counters achievement criteria are evaluated against.
type LearnerStats struct {
	LessonsCompleted   int `json:"lessons_completed"`
	CoursesCompleted   int `json:"courses_completed"`
	QuizzesPassed      int `json:"quizzes_passed"`
	PerfectQuizzes     int `json:"perfect_quizzes"`
	CertificatesEarned int `json:"certificates_earned"`
}

// Value returns the counter a criteria refers to.
func (s LearnerStats) Value(criteria string) (int, bool) {
	switch criteria {
	case CriteriaLessonsCompleted:
		return s.LessonsCompleted, true
	case CriteriaCoursesCompleted:
		return s.CoursesCompleted, true
	case CriteriaQuizzesPassed:
		return s.QuizzesPassed, true
	case CriteriaPerfectQuizzes:
		return s.PerfectQuizzes, true
	case CriteriaCertificatesEarned:
		return s.CertificatesEarned, true
	}
	return 0, false
}
