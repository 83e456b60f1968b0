package repository

import (
	"context"
	"time"

	"github.com/splax/learnhub/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash []byte) error
	SetUserActive(ctx context.Context, id int64, active bool) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	DeleteUser(ctx context.Context, id int64) error
}

// CourseRepository manages courses, modules, lessons and lesson completion.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *domain.Course) error
	GetCourse(ctx context.Context, id int64) (*domain.Course, error)
	ListCourses(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error)
	ListFeaturedCourses(ctx context.Context, limit int) ([]domain.Course, error)
	UpdateCourse(ctx context.Context, course *domain.Course) error
	SetCoursePublished(ctx context.Context, id int64, published bool) error
	DeleteCourse(ctx context.Context, id int64) error
	ListCourseStudents(ctx context.Context, courseID int64) ([]domain.EnrolledStudent, error)

	CreateModule(ctx context.Context, module *domain.Module) error
	GetModule(ctx context.Context, id int64) (*domain.Module, error)
	ListModules(ctx context.Context, courseID int64) ([]domain.Module, error)
	UpdateModule(ctx context.Context, module *domain.Module) error
	DeleteModule(ctx context.Context, id int64) error

	CreateLesson(ctx context.Context, lesson *domain.Lesson) error
	GetLesson(ctx context.Context, id int64) (*domain.Lesson, error)
	ListLessons(ctx context.Context, moduleID int64) ([]domain.Lesson, error)
	UpdateLesson(ctx context.Context, lesson *domain.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
	LessonCourseID(ctx context.Context, lessonID int64) (int64, error)
	CountCourseLessons(ctx context.Context, courseID int64) (int, error)
	MarkLessonComplete(ctx context.Context, userID, lessonID int64, at time.Time) (bool, error)
	CountCompletedLessons(ctx context.Context, userID, courseID int64) (int, error)
}

// AssessmentRepository persists quizzes, questions, attempts and projects.
type AssessmentRepository interface {
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuiz(ctx context.Context, id int64) (*domain.Quiz, error)
	ListQuizzes(ctx context.Context, lessonID int64) ([]domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	DeleteQuiz(ctx context.Context, id int64) error
	QuizCourseID(ctx context.Context, quizID int64) (int64, error)

	CreateQuestion(ctx context.Context, question *domain.Question) error
	GetQuestion(ctx context.Context, id int64) (*domain.Question, error)
	ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
	UpdateQuestion(ctx context.Context, question *domain.Question) error
	DeleteQuestion(ctx context.Context, id int64) error

	CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error
	ListAttempts(ctx context.Context, quizID, userID int64) ([]domain.QuizAttempt, error)
	QuizStats(ctx context.Context, quizID int64) (*domain.QuizStats, error)

	CreateProject(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context, userID int64) ([]domain.Project, error)
	ListPendingProjects(ctx context.Context, instructorID int64) ([]domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	GradeProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id int64) error
}

// LearningRepository persists enrollments, certificates, notes, bookmarks and uploads.
type LearningRepository interface {
	CreateEnrollment(ctx context.Context, enrollment *domain.Enrollment) error
	GetEnrollment(ctx context.Context, id int64) (*domain.Enrollment, error)
	GetEnrollmentByUserCourse(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error)
	ListEnrollments(ctx context.Context, userID int64) ([]domain.Enrollment, error)
	UpdateEnrollmentProgress(ctx context.Context, enrollment *domain.Enrollment) error
	DeleteEnrollment(ctx context.Context, id int64) error

	CreateCertificate(ctx context.Context, certificate *domain.Certificate) error
	GetCertificate(ctx context.Context, id int64) (*domain.Certificate, error)
	GetCertificateByCode(ctx context.Context, code string) (*domain.Certificate, error)
	GetCertificateByUserCourse(ctx context.Context, userID, courseID int64) (*domain.Certificate, error)
	ListCertificates(ctx context.Context, userID int64) ([]domain.Certificate, error)

	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id int64) (*domain.Note, error)
	ListNotes(ctx context.Context, userID, lessonID int64) ([]domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, id int64) error

	CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error
	GetBookmark(ctx context.Context, id int64) (*domain.Bookmark, error)
	ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) error

	CreateUpload(ctx context.Context, upload *domain.Upload) error
	GetUpload(ctx context.Context, id int64) (*domain.Upload, error)
	DeleteUpload(ctx context.Context, id int64) error
}

// AchievementRepository persists the achievement catalogue and unlocks.
type AchievementRepository interface {
	ListAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error)
	GetAchievement(ctx context.Context, id, userID int64) (*domain.Achievement, error)
	ListAchievementCategories(ctx context.Context) ([]domain.AchievementCategory, error)
	ListUserAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error)
	UnlockAchievement(ctx context.Context, userID, achievementID int64, at time.Time) (bool, error)
	LearnerStats(ctx context.Context, userID int64) (domain.LearnerStats, error)
}

// AnalyticsRepository aggregates reporting data.
type AnalyticsRepository interface {
	StudentDashboard(ctx context.Context, userID int64) (*domain.StudentDashboard, error)
	InstructorDashboard(ctx context.Context, instructorID int64) (*domain.InstructorDashboard, error)
	CourseAnalytics(ctx context.Context, courseID int64) (*domain.CourseAnalytics, error)
	PlatformAnalytics(ctx context.Context) (*domain.PlatformAnalytics, error)
}

// TokenBlacklistRepository stores hashes of revoked tokens.
type TokenBlacklistRepository interface {
	AddBlacklistedToken(ctx context.Context, hash string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, hash string, now time.Time) (bool, error)
	PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}
