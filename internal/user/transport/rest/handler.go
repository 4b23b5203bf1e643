// Package rest provides HTTP handlers for registration, login and the
// current-user endpoint.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	usererrors "github.com/storehub/storehub/internal/user/errors"
	"github.com/storehub/storehub/internal/user/service"
	"github.com/storehub/storehub/pkg/auth"
	"github.com/storehub/storehub/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.UserService
	validate *validator.Validate
	rp       *web.Responder
	logger   *slog.Logger
}

// NewHandler creates a new instance of the auth API with the provided service.
func NewHandler(service service.UserService, rp *web.Responder, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		rp:       rp,
		logger:   logger.With("component", "user_rest"),
	}
}

// RegisterRoutes registers the HTTP routes for authentication. authMW guards
// the routes that need a valid token.
func (h *Handler) RegisterRoutes(r *chi.Mux, authMW func(http.Handler) http.Handler) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Post("/logout", h.Logout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/api/v1/user", h.CurrentUser)
	})
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto service.UserRegisterDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	registered, err := h.service.Register(r.Context(), dto)
	if err != nil {
		if errors.Is(err, usererrors.ErrEmailTaken) {
			h.logger.WarnContext(r.Context(), "Registration with taken email", "email", dto.Email)
			h.rp.Respond(w, http.StatusUnprocessableEntity, web.SuccessFalse, map[string]any{
				"validation_errors": map[string]string{"email": "failed on rule: unique"},
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "Error registering user", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "User registered", "ID", registered.User.ID)
	h.rp.Respond(w, http.StatusCreated, web.SuccessTrue, map[string]any{
		"user":  registered.User,
		"token": registered.Token,
	})
}

// Login verifies credentials and returns a token. A credential mismatch is a
// plain message response, not an error status.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto service.UserLoginDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	loggedIn, err := h.service.Login(r.Context(), dto)
	if err != nil {
		if errors.Is(err, usererrors.ErrInvalidCredentials) {
			h.logger.WarnContext(r.Context(), "Failed login attempt", "email", dto.Email)
			h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
				web.KeyMessage: "Check email & password",
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "Error logging in", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "User logged in", "ID", loggedIn.User.ID)
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		"user":  loggedIn.User,
		"token": loggedIn.Token,
	})
}

// Logout acknowledges the logout. Tokens are stateless, so the client simply
// discards its copy.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.ContextUserID(w, r, h.rp); !ok {
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Logged out successfully",
		"isLoggedIn":   false,
	})
}

// CurrentUser returns the authenticated user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}

	user, err := h.service.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, usererrors.ErrUserNotFound) {
			h.rp.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving current user", "ID", userID, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"user": user})
}
