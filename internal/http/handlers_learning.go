package httpx

import (
	"net/http"

	"github.com/splax/learnhub/internal/routing"
)

type enrollPayload struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

type progressPayload struct {
	Progress *float64 `json:"progress" validate:"required,gte=0,lte=100"`
}

type issueCertificatePayload struct {
	UserID   int64 `json:"user_id" validate:"required,gt=0"`
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

type notePayload struct {
	Content string `json:"content" validate:"required,notblank,max=20000"`
}

type bookmarkPayload struct {
	LessonID int64 `json:"lesson_id" validate:"required,gt=0"`
}

func (r *Router) handleListEnrollments(w http.ResponseWriter, req *routing.Request) {
	enrollments, err := r.svc.Learning.ListEnrollments(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, enrollments)
}

func (r *Router) handleEnroll(w http.ResponseWriter, req *routing.Request) {
	var payload enrollPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	enrollment, err := r.svc.Learning.Enroll(req.Context(), caller(req), payload.CourseID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Enrolled successfully", enrollment)
}

func (r *Router) handleGetEnrollment(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	enrollment, err := r.svc.Learning.GetEnrollment(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, enrollment)
}

func (r *Router) handleEnrollmentProgress(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload progressPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	result, err := r.svc.Learning.SetProgress(req.Context(), caller(req), id, *payload.Progress)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Progress updated", result)
}

func (r *Router) handleUnenroll(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Learning.Unenroll(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Unenrolled", nil)
}

func (r *Router) handleListCertificates(w http.ResponseWriter, req *routing.Request) {
	certificates, err := r.svc.Learning.ListCertificates(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, certificates)
}

func (r *Router) handleVerifyCertificate(w http.ResponseWriter, req *routing.Request) {
	code := req.Param("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, messageBadPathParam)
		return
	}
	certificate, err := r.svc.Learning.VerifyCertificate(req.Context(), code)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Certificate is valid", certificate)
}

func (r *Router) handleGetCertificate(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	certificate, err := r.svc.Learning.GetCertificate(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, certificate)
}

func (r *Router) handleIssueCertificate(w http.ResponseWriter, req *routing.Request) {
	var payload issueCertificatePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	certificate, err := r.svc.Learning.IssueCertificate(req.Context(), caller(req), payload.UserID, payload.CourseID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Certificate issued", certificate)
}

func (r *Router) handleListNotes(w http.ResponseWriter, req *routing.Request) {
	lessonID, ok := pathID(w, req, "lessonId")
	if !ok {
		return
	}
	notes, err := r.svc.Learning.ListNotes(req.Context(), caller(req), lessonID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

func (r *Router) handleCreateNote(w http.ResponseWriter, req *routing.Request) {
	lessonID, ok := pathID(w, req, "lessonId")
	if !ok {
		return
	}
	var payload notePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	note, err := r.svc.Learning.CreateNote(req.Context(), caller(req), lessonID, payload.Content)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Note created", note)
}

func (r *Router) handleUpdateNote(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload notePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	note, err := r.svc.Learning.UpdateNote(req.Context(), caller(req), id, payload.Content)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note updated", note)
}

func (r *Router) handleDeleteNote(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Learning.DeleteNote(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note deleted", nil)
}

func (r *Router) handleListBookmarks(w http.ResponseWriter, req *routing.Request) {
	bookmarks, err := r.svc.Learning.ListBookmarks(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, bookmarks)
}

func (r *Router) handleCreateBookmark(w http.ResponseWriter, req *routing.Request) {
	var payload bookmarkPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	bookmark, err := r.svc.Learning.CreateBookmark(req.Context(), caller(req), payload.LessonID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Bookmark added", bookmark)
}

func (r *Router) handleDeleteBookmark(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Learning.DeleteBookmark(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Bookmark removed", nil)
}
