package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/movein/internal/models"
	apierrors "github.com/vikasavnish/movein/internal/pkg/errors"
	"github.com/vikasavnish/movein/internal/pkg/response"
	"github.com/vikasavnish/movein/internal/services"
	"github.com/vikasavnish/movein/internal/utils"
)

// SessionManager is the session side of authentication used by handlers.
type SessionManager interface {
	Login(w http.ResponseWriter, r *http.Request, user *models.User) error
	Logout(w http.ResponseWriter, r *http.Request) error
	AddFlash(w http.ResponseWriter, r *http.Request, message, category string)
	ValidCSRF(r *http.Request) bool
}

const formExpired = "Your form has expired. Please try again."

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	authService services.AuthService
	sessions    SessionManager
	render      *Renderer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthService, sessions SessionManager, render *Renderer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		render:      render,
	}
}

func (h *AuthHandler) RegisterRoutes(rt Routes) {
	rt.Public.HandleFunc("/signup", h.Signup).Methods("GET", "POST")
	rt.Public.HandleFunc("/login", h.Login).Methods("GET", "POST")
	rt.Public.HandleFunc("/logout", h.Logout).Methods("GET")
	rt.Public.HandleFunc("/api/token", h.Token).Methods("POST")
}

// Signup shows the signup form and creates the account on submit.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var form models.SignupRequest
	if r.Method == http.MethodGet {
		h.render.Render(w, r, http.StatusOK, pageSignup, PageData{Form: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.render.Render(w, r, http.StatusBadRequest, pageSignup, PageData{Form: form})
		return
	}
	if !h.sessions.ValidCSRF(r) {
		h.sessions.AddFlash(w, r, formExpired, "danger")
		h.render.Render(w, r, http.StatusBadRequest, pageSignup, PageData{Form: form})
		return
	}
	form = models.SignupRequest{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
	}

	user, err := h.authService.Signup(r.Context(), form)
	var verr *services.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUserExists):
		h.sessions.AddFlash(w, r, "Username already taken", "danger")
		h.render.Render(w, r, http.StatusOK, pageSignup, PageData{Form: form})
		return
	case errors.Is(err, services.ErrEmptyPassword):
		h.render.Render(w, r, http.StatusOK, pageSignup, PageData{
			Form:   form,
			Errors: map[string]string{"password": "is required"},
		})
		return
	case errors.As(err, &verr):
		h.render.Render(w, r, http.StatusOK, pageSignup, PageData{Form: form, Errors: verr.Fields})
		return
	default:
		log.Error().Err(err).Msg("signup failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		log.Error().Err(err).Msg("failed to start session")
	}
	http.Redirect(w, r, "/search", http.StatusFound)
}

// Login shows the login form and starts a session on valid credentials.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form models.LoginRequest
	if r.Method == http.MethodGet {
		h.render.Render(w, r, http.StatusOK, pageLogin, PageData{Form: form})
		return
	}

	if err := r.ParseForm(); err == nil {
		form.Username = r.PostFormValue("username")
		form.Password = r.PostFormValue("password")
	}
	if !h.sessions.ValidCSRF(r) {
		h.sessions.AddFlash(w, r, formExpired, "danger")
		h.render.Render(w, r, http.StatusBadRequest, pageLogin, PageData{Form: models.LoginRequest{Username: form.Username}})
		return
	}
	if fields := utils.Validate(form); fields != nil {
		h.render.Render(w, r, http.StatusOK, pageLogin, PageData{Form: form, Errors: fields})
		return
	}

	user, err := h.authService.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("authenticate failed")
		}
		h.sessions.AddFlash(w, r, "Invalid credentials.", "danger")
		h.render.Render(w, r, http.StatusOK, pageLogin, PageData{Form: form})
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		log.Error().Err(err).Msg("failed to start session")
	}
	h.sessions.AddFlash(w, r, fmt.Sprintf("Hello, %s!", user.Username), "success")
	http.Redirect(w, r, "/search", http.StatusFound)
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		log.Warn().Err(err).Msg("failed to clear session")
	}
	h.sessions.AddFlash(w, r, "You've logged out of MoveIn.", "info")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Token exchanges credentials for a bearer token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if fields := utils.Validate(req); fields != nil {
		response.ValidationErrors(w, fields)
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		response.Error(w, apierrors.ErrUnauthorized.WithMessage("Invalid credentials."))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		response.Error(w, fmt.Errorf("generate token: %w", err))
		return
	}

	response.OK(w, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
