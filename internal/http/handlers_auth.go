package httpx

import (
	"net/http"

	"github.com/splax/learnhub/internal/domain"
	"github.com/splax/learnhub/internal/routing"
	"github.com/splax/learnhub/internal/service/auth"
	"github.com/splax/learnhub/internal/service/token"
)

type registerPayload struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutPayload struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type tokensView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type sessionView struct {
	User   *domain.User `json:"user,omitempty"`
	Tokens tokensView   `json:"tokens"`
}

func viewTokens(pair token.TokenPair) tokensView {
	return tokensView{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func (r *Router) handleRegister(w http.ResponseWriter, req *routing.Request) {
	var payload registerPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	user, pair, err := r.svc.Auth.Register(req.Context(), auth.RegisterInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Registration successful", sessionView{User: user, Tokens: viewTokens(pair)})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *routing.Request) {
	var payload loginPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	user, pair, err := r.svc.Auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Login successful", sessionView{User: user, Tokens: viewTokens(pair)})
}

func (r *Router) handleRefresh(w http.ResponseWriter, req *routing.Request) {
	var payload refreshPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	pair, err := r.svc.Auth.Refresh(req.Context(), payload.RefreshToken)
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, sessionView{Tokens: viewTokens(pair)})
}

// handleLogout revokes the presented access token and, when sent, the refresh token.
func (r *Router) handleLogout(w http.ResponseWriter, req *routing.Request) {
	var payload logoutPayload
	if len(req.RawBody) > 0 {
		if err := req.Bind(&payload); err != nil {
			r.fail(w, req, err)
			return
		}
	}
	access, _ := r.svc.Tokens.ExtractBearer(req.Header)
	if err := r.svc.Auth.Logout(req.Context(), access, payload.RefreshToken); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out", nil)
}

func (r *Router) handleMe(w http.ResponseWriter, req *routing.Request) {
	user, err := r.svc.Auth.Me(req.Context(), req.CallerID())
	if err != nil {
		r.fail(w, req, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (r *Router) handleChangePassword(w http.ResponseWriter, req *routing.Request) {
	var payload changePasswordPayload
	if err := r.decode(req, &payload); err != nil {
		r.fail(w, req, err)
		return
	}
	if err := r.svc.Auth.ChangePassword(req.Context(), req.CallerID(), payload.CurrentPassword, payload.NewPassword); err != nil {
		r.fail(w, req, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated", nil)
}
