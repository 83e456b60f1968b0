package httpx

import (
	"net/http"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/user"
)

type createUserPayload struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=admin instructor student"`
}

type updateUserPayload struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,notblank,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin instructor student"`
	IsActive  *bool   `json:"is_active"`
}

type statusPayload struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (p updateUserPayload) input() user.UpdateInput {
	return user.UpdateInput{
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		IsActive:  p.IsActive,
	}
}

func (r *Router) handleProfile(w http.ResponseWriter, req *routing.Request) {
	account, err := r.svc.Users.Get(req.Context(), req.CallerID())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, account)
}

func (r *Router) handleUpdateProfile(w http.ResponseWriter, req *routing.Request) {
	var payload updateUserPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	account, err := r.svc.Users.UpdateProfile(req.Context(), caller(req), payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated", account)
}

func (r *Router) handleListUsers(w http.ResponseWriter, req *routing.Request) {
	limit, offset := page(req)
	users, err := r.svc.Users.List(req.Context(), domain.UserFilter{
		Role:   req.Query.Get("role"),
		Search: req.Query.Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

func (r *Router) handleCreateUser(w http.ResponseWriter, req *routing.Request) {
	var payload createUserPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	account, err := r.svc.Users.Create(req.Context(), user.CreateInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      payload.Role,
	})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "User created", account)
}

func (r *Router) handlePublicProfile(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	profile, err := r.svc.Users.PublicProfile(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (r *Router) handleGetUser(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	account, err := r.svc.Users.Get(req.Context(), id)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, account)
}

func (r *Router) handleUpdateUser(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload updateUserPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	account, err := r.svc.Users.Update(req.Context(), caller(req), id, payload.input())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "User updated", account)
}

func (r *Router) handleSetUserStatus(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	var payload statusPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Users.SetStatus(req.Context(), caller(req), id, *payload.IsActive); err != nil {
		r.fail(w, req, err)
		return
	}
	msg := "User deactivated"
	if *payload.IsActive {
		msg = "User activated"
	}
	writeMessage(w, http.StatusOK, msg, map[string]any{"id": id, "is_active": *payload.IsActive})
}

func (r *Router) handleDeleteUser(w http.ResponseWriter, req *routing.Request) {
	id, ok := pathID(w, req, "id")
	if !ok {
		return
	}
	if err := r.svc.Users.Delete(req.Context(), caller(req), id); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted", nil)
}
