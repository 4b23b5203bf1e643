// Package rest provides HTTP handlers for link management and the public
// visit redirect.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	linkerrors "github.com/storehub/storehub/internal/link/errors"
	"github.com/storehub/storehub/internal/link/service"
	"github.com/storehub/storehub/pkg/auth"
	"github.com/storehub/storehub/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const defaultPageSize = 50

type Handler struct {
	service  service.LinkService
	validate *validator.Validate
	rp       *web.Responder
	logger   *slog.Logger
}

// NewHandler creates a new instance of the link API with the provided service.
func NewHandler(service service.LinkService, rp *web.Responder, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		rp:       rp,
		logger:   logger.With("component", "link_rest"),
	}
}

// RegisterRoutes registers the link routes. The visit redirect is public;
// everything else requires a valid token.
func (h *Handler) RegisterRoutes(r *chi.Mux, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Route("/api/v1/links", func(r chi.Router) {
			r.Get("/", h.FindAll)
			r.Post("/", h.Create)
			r.Delete("/", h.DeleteAll)
			r.Get("/search/{shortLink}", h.Search)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindByID)
				r.Put("/", h.Update)
				r.Delete("/", h.Delete)
			})
		})
	})

	r.Get("/visit/{shortLink}", h.Visit)
}

// FindAll retrieves the authenticated user's links.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}
	limit, offset, err := web.ParsePagination(r, defaultPageSize)
	if err != nil {
		h.rp.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.service.FindAllByUser(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving link list", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"links": *list})
}

// FindByID retrieves one link.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), userID, id)
	if err != nil {
		h.respondLinkError(w, r, err)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"link": found})
}

// Create saves a new link.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}
	var dto service.LinkCreateDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), userID, dto)
	if err != nil {
		if errors.Is(err, linkerrors.ErrLinkExists) {
			h.rp.RespondError(w, http.StatusUnprocessableEntity, "The link is already saved")
			return
		}
		if errors.Is(err, linkerrors.ErrInvalidLink) {
			h.rp.RespondError(w, http.StatusUnprocessableEntity, "Domain is required.")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error creating link", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Link created", "ID", created.ID)
	h.rp.Respond(w, http.StatusCreated, web.SuccessTrue, map[string]any{"link": created})
}

// Update replaces a link's URL.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}
	var dto service.LinkUpdateDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	updated, err := h.service.Update(r.Context(), userID, id, dto)
	if err != nil {
		if errors.Is(err, linkerrors.ErrInvalidLink) {
			h.rp.RespondError(w, http.StatusUnprocessableEntity, "Domain is required.")
			return
		}
		h.respondLinkError(w, r, err)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"link": updated})
}

// Delete removes one link.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.respondLinkError(w, r, err)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Link deleted successfully",
	})
}

// DeleteAll removes every link of the authenticated user.
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}

	if err := h.service.DeleteAll(r.Context(), userID); err != nil {
		h.logger.ErrorContext(r.Context(), "Error deleting links", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "All links deleted successfully",
	})
}

// Search retrieves links whose short link contains the path fragment.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ContextUserID(w, r, h.rp)
	if !ok {
		return
	}
	fragment := r.PathValue("shortLink")

	list, err := h.service.Search(r.Context(), userID, fragment)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error searching links", "fragment", fragment, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"links": *list})
}

// Visit resolves a short link and redirects to the full URL.
func (h *Handler) Visit(w http.ResponseWriter, r *http.Request) {
	shortLink := r.PathValue("shortLink")

	fullLink, err := h.service.Visit(r.Context(), shortLink)
	if err != nil {
		if errors.Is(err, linkerrors.ErrLinkNotFound) {
			h.rp.RespondError(w, http.StatusNotFound, "Link not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error resolving short link", "short_link", shortLink, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fullLink, http.StatusMovedPermanently)
}

func (h *Handler) respondLinkError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, linkerrors.ErrLinkNotFound) {
		h.rp.RespondError(w, http.StatusNotFound, "Link not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "Error handling link request", "error", err)
	h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
}
