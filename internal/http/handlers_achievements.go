package httpx

import (
	"net/http"

	"github.com/splax/learnhub/internal/routing"
)

func (r *Router) handleListAchievements(w http.ResponseWriter, req *routing.Request) {
	achievements, err := r.svc.Achievements.List(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, achievements)
}

func (r *Router) handleAchievementCategories(w http.ResponseWriter, req *routing.Request) {
	categories, err := r.svc.Achievements.Categories(req.Context())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, categories)
}

func (r *Router) handleMyAchievements(w http.ResponseWriter, req *routing.Request) {
	achievements, err := r.svc.Achievements.Mine(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, achievements)
}

func (r *Router) handleCheckAchievements(w http.ResponseWriter, req *routing.Request) {
	unlocked, err := r.svc.Achievements.Check(req.Context(), req.CallerID())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	msg := "No new achievements"
	if len(unlocked) > 0 {
		msg = "New achievements unlocked"
	}
	writeMessage(w, http.StatusOK, msg, map[string]any{"unlocked": unlocked})
}

func (r *Router) handleGetAchievement(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	achievement, err := r.svc.Achievements.Get(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, achievement)
}

func (r *Router) handleDashboard(w http.ResponseWriter, req *routing.Request) {
	dashboard, err := r.svc.Analytics.Dashboard(req.Context(), caller(req))
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, dashboard)
}

func (r *Router) handleCourseAnalytics(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	analytics, err := r.svc.Analytics.Course(req.Context(), caller(req), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, analytics)
}

func (r *Router) handlePlatformAnalytics(w http.ResponseWriter, req *routing.Request) {
	platform, err := r.svc.Analytics.Platform(req.Context())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, platform)
}
