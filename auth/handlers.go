package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/validation"
)

// Authenticator is the part of Service the handlers use.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*Token, error)
}

// Handlers serves the /auth endpoints.
type Handlers struct {
	service Authenticator
}

// NewHandlers creates the auth handlers.
func NewHandlers(service Authenticator) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the auth endpoints on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister())
	r.Post("/login", h.HandleLogin())
}

// HandleRegister godoc
// @Summary Register a user
// @Description Creates an account. The password needs upper and lower case letters, a digit and a punctuation character.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterRequest true "Credentials"
// @Success 201 {object} apperror.MessageResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "User already exists"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := validation.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		if _, err := h.service.Register(r.Context(), req.Username, req.Password); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		apperror.WriteJSON(w, http.StatusCreated, apperror.MessageResponse{Msg: "User registered!"})
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Exchanges credentials for a bearer access token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Wrong credentials"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := validation.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		token, err := h.service.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		apperror.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token.AccessToken})
	}
}
