package httpx

import (
	"net/http"

	"github.com/splax/learnhub/internal/routing"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// registry binds every handler reference of the route table to its implementation.
func (r *Router) registry() routing.Registry {
	reg := routing.Registry{
		"health@check": r.handleHealth,

		"auth@register":       r.handleRegister,
		"auth@login":          r.handleLogin,
		"auth@refresh":        r.handleRefresh,
		"auth@logout":         r.handleLogout,
		"auth@me":             r.handleMe,
		"auth@changePassword": r.handleChangePassword,

		"users@profile":       r.handleProfile,
		"users@updateProfile": r.handleUpdateProfile,
		"users@index":         r.handleListUsers,
		"users@store":         r.handleCreateUser,
		"users@publicProfile": r.handlePublicProfile,
		"users@show":          r.handleGetUser,
		"users@update":        r.handleUpdateUser,
		"users@setStatus":     r.handleSetUserStatus,
		"users@destroy":       r.handleDeleteUser,

		"courses@index":    r.handleListCourses,
		"courses@featured": r.handleFeaturedCourses,
		"courses@mine":     r.handleMyCourses,
		"courses@show":     r.handleGetCourse,
		"courses@store":    r.handleCreateCourse,
		"courses@update":   r.handleUpdateCourse,
		"courses@publish":  r.handlePublishCourse,
		"courses@destroy":  r.handleDeleteCourse,
		"courses@students": r.handleCourseStudents,

		"modules@index":   r.handleListModules,
		"modules@store":   r.handleCreateModule,
		"modules@show":    r.handleGetModule,
		"modules@update":  r.handleUpdateModule,
		"modules@destroy": r.handleDeleteModule,

		"lessons@index":    r.handleListLessons,
		"lessons@store":    r.handleCreateLesson,
		"lessons@show":     r.handleGetLesson,
		"lessons@update":   r.handleUpdateLesson,
		"lessons@destroy":  r.handleDeleteLesson,
		"lessons@complete": r.handleCompleteLesson,

		"quizzes@index":    r.handleListQuizzes,
		"quizzes@store":    r.handleCreateQuiz,
		"quizzes@show":     r.handleGetQuiz,
		"quizzes@update":   r.handleUpdateQuiz,
		"quizzes@destroy":  r.handleDeleteQuiz,
		"quizzes@submit":   r.handleSubmitQuiz,
		"quizzes@attempts": r.handleQuizAttempts,

		"questions@index":   r.handleListQuestions,
		"questions@store":   r.handleCreateQuestion,
		"questions@update":  r.handleUpdateQuestion,
		"questions@destroy": r.handleDeleteQuestion,

		"projects@index":   r.handleListProjects,
		"projects@store":   r.handleCreateProject,
		"projects@show":    r.handleGetProject,
		"projects@update":  r.handleUpdateProject,
		"projects@destroy": r.handleDeleteProject,

		"enrollments@index":    r.handleListEnrollments,
		"enrollments@store":    r.handleEnroll,
		"enrollments@show":     r.handleGetEnrollment,
		"enrollments@progress": r.handleEnrollmentProgress,
		"enrollments@destroy":  r.handleUnenroll,

		"certificates@index":  r.handleListCertificates,
		"certificates@verify": r.handleVerifyCertificate,
		"certificates@show":   r.handleGetCertificate,
		"certificates@issue":  r.handleIssueCertificate,

		"grading@pending":       r.handlePendingProjects,
		"grading@grade":         r.handleGradeProject,
		"grading@quizAnalytics": r.handleQuizAnalytics,

		"analytics@dashboard": r.handleDashboard,
		"analytics@course":    r.handleCourseAnalytics,
		"analytics@platform":  r.handlePlatformAnalytics,

		"achievements@index":      r.handleListAchievements,
		"achievements@categories": r.handleAchievementCategories,
		"achievements@mine":       r.handleMyAchievements,
		"achievements@check":      r.handleCheckAchievements,
		"achievements@show":       r.handleGetAchievement,

		"notes@index":   r.handleListNotes,
		"notes@store":   r.handleCreateNote,
		"notes@update":  r.handleUpdateNote,
		"notes@destroy": r.handleDeleteNote,

		"uploads@store":   r.handleUpload,
		"uploads@show":    r.handleGetUpload,
		"uploads@destroy": r.handleDeleteUpload,

		"bookmarks@index":   r.handleListBookmarks,
		"bookmarks@store":   r.handleCreateBookmark,
		"bookmarks@destroy": r.handleDeleteBookmark,

		"notifications@stream": r.handleNotificationStream,
	}
	for ref, handler := range reg {
		reg[ref] = r.authed(handler)
	}
	return reg
}

// decode binds the JSON body into dst and validates it.
func (r *Router) decode(req *routing.Request, dst any) error {
	if err := req.Bind(dst); err != nil {
		return err
	}
	return r.validator.Struct(dst)
}

// pathID reads a numeric path parameter, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, req *routing.Request, name string) (int64, bool) {
	id, err := req.ParamID(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, messageBadPathParam)
		return 0, false
	}
	return id, true
}

// page reads limit/offset query parameters.
func page(req *routing.Request) (limit, offset int) {
	limit = req.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = max(req.QueryInt("offset", 0), 0)
	return limit, offset
}
