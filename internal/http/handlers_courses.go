package httpx

import (
	"net/http"
	"strconv"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/catalog"
)

type coursePayload struct {
	Title        string `json:"title" validate:"required,notblank,max=200"`
	Description  string `json:"description" validate:"max=10000"`
	Category     string `json:"category" validate:"max=100"`
	Level        string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,max=500"`
	IsFeatured   bool   `json:"is_featured"`
}

type publishPayload struct {
	IsPublished *bool `json:"is_published"`
}

type modulePayload struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Position    int    `json:"position" validate:"gte=0"`
}

type lessonPayload struct {
	Title           string `json:"title" validate:"required,notblank,max=200"`
	Content         string `json:"content"`
	VideoURL        string `json:"video_url" validate:"omitempty,url,max=500"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	Position        int    `json:"position" validate:"gte=0"`
}

func (p coursePayload) input() catalog.CourseInput {
	return catalog.CourseInput{
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		Level:        p.Level,
		ThumbnailURL: p.ThumbnailURL,
		IsFeatured:   p.IsFeatured,
	}
}

func (p modulePayload) input() catalog.ModuleInput {
	return catalog.ModuleInput{Title: p.Title, Description: p.Description, Position: p.Position}
}

func (p lessonPayload) input() catalog.LessonInput {
	return catalog.LessonInput{
		Title:           p.Title,
		Content:         p.Content,
		VideoURL:        p.VideoURL,
		DurationMinutes: p.DurationMinutes,
		Position:        p.Position,
	}
}

func courseFilter(req *routing.Request) domain.CourseFilter {
	limit, offset := page(req)
	filter := domain.CourseFilter{
		Category: req.Query.Get("category"),
		Level:    req.Query.Get("level"),
		Search:   req.Query.Get("search"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := req.Query.Get("instructor_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.InstructorID = id
		}
	}
	return filter
}

func (r *Router) handleListCourses(w http.ResponseWriter, req *routing.Request) {
	courses, err := r.svc.Catalog.ListCourses(req.Context(), courseFilter(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, courses)
}

func (r *Router) handleFeaturedCourses(w http.ResponseWriter, req *routing.Request) {
	courses, err := r.svc.Catalog.Featured(req.Context())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, courses)
}

func (r *Router) handleMyCourses(w http.ResponseWriter, req *routing.Request) {
	courses, err := r.svc.Catalog.Mine(req.Context(), caller(req), courseFilter(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, courses)
}

// handleGetCourse is public. A valid bearer token, when sent, lets owners read their drafts.
func (r *Router) handleGetCourse(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	course, err := r.svc.Catalog.GetCourse(req.Context(), r.optionalIdentity(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, course)
}

func (r *Router) handleCreateCourse(w http.ResponseWriter, req *routing.Request) {
	var payload coursePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	course, err := r.svc.Catalog.CreateCourse(req.Context(), caller(req), payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Course created", course)
}

func (r *Router) handleUpdateCourse(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload coursePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	course, err := r.svc.Catalog.UpdateCourse(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Course updated", course)
}

// handlePublishCourse publishes by default; {"is_published": false} unpublishes.
func (r *Router) handlePublishCourse(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload publishPayload
	if len(req.RawBody) > 0 {
		if err := req.Bind(&payload); err != nil {
			r.fail(w, req, err)
			return
		}
	}
	published := payload.IsPublished == nil || *payload.IsPublished
	course, err := r.svc.Catalog.Publish(req.Context(), caller(req), id, published)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	msg := "Course unpublished"
	if published {
		msg = "Course published"
	}
	writeMessage(w, http.StatusOK, msg, course)
}

func (r *Router) handleDeleteCourse(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Catalog.DeleteCourse(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Course deleted", nil)
}

func (r *Router) handleCourseStudents(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	students, err := r.svc.Catalog.Students(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, students)
}

func (r *Router) handleListModules(w http.ResponseWriter, req *routing.Request) {
	courseID, ok := pathID(w, req, "courseId")
	if !ok {
		return
	}
	modules, err := r.svc.Catalog.ListModules(req.Context(), r.optionalIdentity(req), courseID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, modules)
}

func (r *Router) handleCreateModule(w http.ResponseWriter, req *routing.Request) {
	courseID, ok := pathID(w, req, "courseId")
	if !ok {
		return
	}
	var payload modulePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	module, err := r.svc.Catalog.CreateModule(req.Context(), caller(req), courseID, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Module created", module)
}

func (r *Router) handleGetModule(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	module, err := r.svc.Catalog.GetModule(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, module)
}

func (r *Router) handleUpdateModule(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload modulePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	module, err := r.svc.Catalog.UpdateModule(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Module updated", module)
}

func (r *Router) handleDeleteModule(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Catalog.DeleteModule(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Module deleted", nil)
}

func (r *Router) handleListLessons(w http.ResponseWriter, req *routing.Request) {
	moduleID, ok := pathID(w, req, "moduleId")
	if !ok {
		return
	}
	lessons, err := r.svc.Catalog.ListLessons(req.Context(), caller(req), moduleID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, lessons)
}

func (r *Router) handleCreateLesson(w http.ResponseWriter, req *routing.Request) {
	moduleID, ok := pathID(w, req, "moduleId")
	if !ok {
		return
	}
	var payload lessonPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	lesson, err := r.svc.Catalog.CreateLesson(req.Context(), caller(req), moduleID, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Lesson created", lesson)
}

func (r *Router) handleGetLesson(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	lesson, err := r.svc.Catalog.GetLesson(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, lesson)
}

func (r *Router) handleUpdateLesson(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload lessonPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	lesson, err := r.svc.Catalog.UpdateLesson(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Lesson updated", lesson)
}

func (r *Router) handleDeleteLesson(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Catalog.DeleteLesson(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Lesson deleted", nil)
}

func (r *Router) handleCompleteLesson(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	result, err := r.svc.Learning.CompleteLesson(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Lesson completed", result)
}

// optionalIdentity resolves a bearer token on a public route. Any token
// problem degrades to an anonymous caller.
func (r *Router) optionalIdentity(req *routing.Request) *domain.Identity {
	if req.Identity != nil {
		return req.Identity
	}
	raw, ok := r.svc.Tokens.ExtractBearer(req.Header)
	if !ok {
		return nil
	}
	identity, err := r.svc.Tokens.AuthenticateAccess(req.Context(), raw)
	if err != nil {
		return nil
	}
	return &identity
}
