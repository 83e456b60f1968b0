package httpx

import (
	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
)

var (
	get   = routing.GET
	post  = routing.POST
	put   = routing.PUT
	patch = routing.PATCH
	del   = routing.DELETE

	staffRoles = []string{domain.RoleAdmin, domain.RoleInstructor}
	adminRoles = []string{domain.RoleAdmin}
)

// Routes returns the API route table. Order is precedence: literal segments
// such as /courses/featured are declared before the /courses/:id they shadow.
func Routes() []routing.Route {
	return []routing.Route{
		routing.Public(get, "/health", "health@check"),

		routing.Public(post, "/auth/register", "auth@register"),
		routing.Public(post, "/auth/login", "auth@login"),
		routing.Public(post, "/auth/refresh", "auth@refresh"),
		routing.Private(post, "/auth/logout", "auth@logout"),
		routing.Private(get, "/auth/me", "auth@me"),
		routing.Private(put, "/auth/password", "auth@changePassword"),

		routing.Private(get, "/profile", "users@profile"),
		routing.Private(put, "/profile", "users@updateProfile"),
		routing.Private(get, "/users", "users@index", adminRoles...),
		routing.Private(post, "/users", "users@store", adminRoles...),
		routing.Private(get, "/users/:id/profile", "users@publicProfile"),
		routing.Private(get, "/users/:id", "users@show", adminRoles...),
		routing.Private(put, "/users/:id", "users@update", adminRoles...),
		routing.Private(patch, "/users/:id/status", "users@setStatus", adminRoles...),
		routing.Private(del, "/users/:id", "users@destroy", adminRoles...),

		routing.Public(get, "/courses", "courses@index"),
		routing.Public(get, "/courses/featured", "courses@featured"),
		routing.Private(get, "/courses/mine", "courses@mine", staffRoles...),
		routing.Public(get, "/courses/:id", "courses@show"),
		routing.Private(post, "/courses", "courses@store", staffRoles...),
		routing.Private(put, "/courses/:id", "courses@update", staffRoles...),
		routing.Private(patch, "/courses/:id/publish", "courses@publish", staffRoles...),
		routing.Private(del, "/courses/:id", "courses@destroy", staffRoles...),
		routing.Private(get, "/courses/:id/students", "courses@students", staffRoles...),

		routing.Public(get, "/courses/:courseId/modules", "modules@index"),
		routing.Private(post, "/courses/:courseId/modules", "modules@store", staffRoles...),
		routing.Private(get, "/modules/:id", "modules@show"),
		routing.Private(put, "/modules/:id", "modules@update", staffRoles...),
		routing.Private(del, "/modules/:id", "modules@destroy", staffRoles...),

		routing.Private(get, "/modules/:moduleId/lessons", "lessons@index"),
		routing.Private(post, "/modules/:moduleId/lessons", "lessons@store", staffRoles...),
		routing.Private(get, "/lessons/:id", "lessons@show"),
		routing.Private(put, "/lessons/:id", "lessons@update", staffRoles...),
		routing.Private(del, "/lessons/:id", "lessons@destroy", staffRoles...),
		routing.Private(post, "/lessons/:id/complete", "lessons@complete"),

		routing.Private(get, "/lessons/:lessonId/quizzes", "quizzes@index"),
		routing.Private(post, "/lessons/:lessonId/quizzes", "quizzes@store", staffRoles...),
		routing.Private(get, "/quizzes/:id", "quizzes@show"),
		routing.Private(put, "/quizzes/:id", "quizzes@update", staffRoles...),
		routing.Private(del, "/quizzes/:id", "quizzes@destroy", staffRoles...),
		routing.Private(post, "/quizzes/:id/submit", "quizzes@submit"),
		routing.Private(get, "/quizzes/:id/attempts", "quizzes@attempts"),

		routing.Private(get, "/quizzes/:quizId/questions", "questions@index"),
		routing.Private(post, "/quizzes/:quizId/questions", "questions@store", staffRoles...),
		routing.Private(put, "/questions/:id", "questions@update", staffRoles...),
		routing.Private(del, "/questions/:id", "questions@destroy", staffRoles...),

		routing.Private(get, "/projects", "projects@index"),
		routing.Private(post, "/projects", "projects@store"),
		routing.Private(get, "/projects/:id", "projects@show"),
		routing.Private(put, "/projects/:id", "projects@update"),
		routing.Private(del, "/projects/:id", "projects@destroy"),

		routing.Private(get, "/enrollments", "enrollments@index"),
		routing.Private(post, "/enrollments", "enrollments@store"),
		routing.Private(get, "/enrollments/:id", "enrollments@show"),
		routing.Private(patch, "/enrollments/:id/progress", "enrollments@progress"),
		routing.Private(del, "/enrollments/:id", "enrollments@destroy"),

		routing.Private(get, "/certificates", "certificates@index"),
		routing.Public(get, "/certificates/verify/:code", "certificates@verify"),
		routing.Private(get, "/certificates/:id", "certificates@show"),
		routing.Private(post, "/certificates", "certificates@issue", staffRoles...),

		routing.Private(get, "/grading/pending", "grading@pending", staffRoles...),
		routing.Private(post, "/grading/projects/:id", "grading@grade", staffRoles...),
		routing.Private(get, "/grading/analytics/:quizId", "grading@quizAnalytics", staffRoles...),

		routing.Private(get, "/analytics/dashboard", "analytics@dashboard"),
		routing.Private(get, "/analytics/courses/:id", "analytics@course", staffRoles...),
		routing.Private(get, "/analytics/platform", "analytics@platform", adminRoles...),

		routing.Private(get, "/achievements", "achievements@index"),
		routing.Private(get, "/achievements/categories", "achievements@categories"),
		routing.Private(get, "/achievements/mine", "achievements@mine"),
		routing.Private(post, "/achievements/check", "achievements@check"),
		routing.Private(get, "/achievements/:id", "achievements@show"),

		routing.Private(get, "/lessons/:lessonId/notes", "notes@index"),
		routing.Private(post, "/lessons/:lessonId/notes", "notes@store"),
		routing.Private(put, "/notes/:id", "notes@update"),
		routing.Private(del, "/notes/:id", "notes@destroy"),

		routing.Private(post, "/uploads", "uploads@store"),
		routing.Private(get, "/uploads/:id", "uploads@show"),
		routing.Private(del, "/uploads/:id", "uploads@destroy"),

		routing.Private(get, "/bookmarks", "bookmarks@index"),
		routing.Private(post, "/bookmarks", "bookmarks@store"),
		routing.Private(del, "/bookmarks/:id", "bookmarks@destroy"),

		routing.Private(get, "/notifications/stream", "notifications@stream"),
	}
}
