package httpx

import (
	"net/http"
	"strconv"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/assessment"
)

type quizPayload struct {
	Title            string `json:"title" validate:"required,notblank,max=200"`
	Description      string `json:"description" validate:"max=5000"`
	PassingScore     *int   `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	TimeLimitMinutes int    `json:"time_limit_minutes" validate:"gte=0"`
}

type questionPayload struct {
	Prompt        string   `json:"prompt" validate:"required,notblank"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,notblank"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Points        int      `json:"points" validate:"gte=0"`
	Position      int      `json:"position" validate:"gte=0"`
}

// submitPayload maps question ids to the chosen option index.
type submitPayload struct {
	Answers map[string]int `json:"answers" validate:"required"`
}

type projectPayload struct {
	CourseID    int64  `json:"course_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=10000"`
	RepoURL     string `json:"repo_url" validate:"omitempty,url,max=500"`
}

type gradePayload struct {
	Grade    *int   `json:"grade" validate:"required,gte=0,lte=100"`
	Feedback string `json:"feedback" validate:"max=10000"`
}

func (p quizPayload) input() assessment.QuizInput {
	return assessment.QuizInput{
		Title:            p.Title,
		Description:      p.Description,
		PassingScore:     p.PassingScore,
		TimeLimitMinutes: p.TimeLimitMinutes,
	}
}

func (p questionPayload) input() assessment.QuestionInput {
	return assessment.QuestionInput{
		Prompt:        p.Prompt,
		Options:       p.Options,
		CorrectOption: p.CorrectOption,
		Points:        p.Points,
		Position:      p.Position,
	}
}

func (p projectPayload) input() assessment.ProjectInput {
	return assessment.ProjectInput{
		CourseID:    p.CourseID,
		Title:       p.Title,
		Description: p.Description,
		RepoURL:     p.RepoURL,
	}
}

func (r *Router) handleListQuizzes(w http.ResponseWriter, req *routing.Request) {
	lessonID, ok := pathID(w, req, "lessonId")
	if !ok {
		return
	}
	quizzes, err := r.svc.Assessment.ListQuizzes(req.Context(), caller(req), lessonID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, quizzes)
}

func (r *Router) handleCreateQuiz(w http.ResponseWriter, req *routing.Request) {
	lessonID, ok := pathID(w, req, "lessonId")
	if !ok {
		return
	}
	var payload quizPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	quiz, err := r.svc.Assessment.CreateQuiz(req.Context(), caller(req), lessonID, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Quiz created", quiz)
}

func (r *Router) handleGetQuiz(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	quiz, err := r.svc.Assessment.GetQuiz(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, quiz)
}

func (r *Router) handleUpdateQuiz(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload quizPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	quiz, err := r.svc.Assessment.UpdateQuiz(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Quiz updated", quiz)
}

func (r *Router) handleDeleteQuiz(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Assessment.DeleteQuiz(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Quiz deleted", nil)
}

func (r *Router) handleSubmitQuiz(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload submitPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	answers := make(map[int64]int, len(payload.Answers))
	for key, option := range payload.Answers {
		questionID, err := strconv.ParseInt(key, 10, 64)
		if err != nil || questionID <= 0 {
			writeErrorDetails(w, http.StatusUnprocessableEntity, messageValidation,
				map[string]string{"answers": "answers must be keyed by question id"}, nil)
			return
		}
		answers[questionID] = option
	}
	attempt, err := r.svc.Assessment.Submit(req.Context(), caller(req), id, answers)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	msg := "Quiz not passed"
	if attempt.Passed {
		msg = "Quiz passed"
	}
	writeMessage(w, http.StatusCreated, msg, attempt)
}

func (r *Router) handleQuizAttempts(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	attempts, err := r.svc.Assessment.Attempts(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, attempts)
}

// handleListQuestions includes correct answers only for the quiz's managers.
func (r *Router) handleListQuestions(w http.ResponseWriter, req *routing.Request) {
	quizID, ok := pathID(w, req, "quizId")
	if !ok {
		return
	}
	questions, reveal, err := r.svc.Assessment.Questions(req.Context(), caller(req), quizID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	if reveal {
		writeData(w, http.StatusOK, questions)
		return
	}
	public := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, q.Public())
	}
	writeData(w, http.StatusOK, public)
}

func (r *Router) handleCreateQuestion(w http.ResponseWriter, req *routing.Request) {
	quizID, ok := pathID(w, req, "quizId")
	if !ok {
		return
	}
	var payload questionPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	question, err := r.svc.Assessment.CreateQuestion(req.Context(), caller(req), quizID, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Question created", question)
}

func (r *Router) handleUpdateQuestion(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload questionPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	question, err := r.svc.Assessment.UpdateQuestion(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Question updated", question)
}

func (r *Router) handleDeleteQuestion(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Assessment.DeleteQuestion(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Question deleted", nil)
}

func (r *Router) handleListProjects(w http.ResponseWriter, req *routing.Request) {
	projects, err := r.svc.Assessment.ListProjects(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, projects)
}

func (r *Router) handleCreateProject(w http.ResponseWriter, req *routing.Request) {
	var payload projectPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	project, err := r.svc.Assessment.CreateProject(req.Context(), caller(req), payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Project submitted", project)
}

func (r *Router) handleGetProject(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	project, err := r.svc.Assessment.GetProject(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, project)
}

func (r *Router) handleUpdateProject(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload projectPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	project, err := r.svc.Assessment.UpdateProject(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Project updated", project)
}

func (r *Router) handleDeleteProject(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Assessment.DeleteProject(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Project deleted", nil)
}

func (r *Router) handlePendingProjects(w http.ResponseWriter, req *routing.Request) {
	projects, err := r.svc.Assessment.PendingProjects(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, projects)
}

func (r *Router) handleGradeProject(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload gradePayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	project, err := r.svc.Assessment.Grade(req.Context(), caller(req), id, *payload.Grade, payload.Feedback)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Project graded", project)
}

func (r *Router) handleQuizAnalytics(w http.ResponseWriter, req *routing.Request) {
	quizID, ok := pathID(w, req, "quizId")
	if !ok {
		return
	}
	stats, err := r.svc.Assessment.Stats(req.Context(), caller(req), quizID)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
