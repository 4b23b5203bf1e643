// Package rest provides HTTP handlers for store-related operations.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	storeerrors "github.com/storehub/storehub/internal/store/errors"
	"github.com/storehub/storehub/internal/store/service"
	"github.com/storehub/storehub/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const defaultPageSize = 50

// Partial-success warnings surfaced when the store row was written but the
// pivot plan was not applied.
const (
	warnAttachFailed = "Warning: The store was created successfully but something went wrong when attaching the products"
	warnSyncFailed   = "Warning: The store was updated successfully but something went wrong when syncing the products"
)

type Handler struct {
	service  service.StoreService
	validate *validator.Validate
	rp       *web.Responder
	logger   *slog.Logger
}

// NewHandler creates a new instance of the store API with the provided service.
func NewHandler(service service.StoreService, rp *web.Responder, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		rp:       rp,
		logger:   logger.With("component", "store_rest"),
	}
}

// RegisterRoutes registers the HTTP routes for stores.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/products", h.FindAllWithProducts)
		r.Get("/products-count", h.FindAllWithProductsCount)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Get("/products", h.FindWithProducts)
		})
	})
}

// FindAll retrieves the store list.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := web.ParsePagination(r, defaultPageSize)
	if err != nil {
		h.rp.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.service.FindAll(r.Context(), limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving store list", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"stores": *list})
}

// FindAllWithProducts retrieves all stores with their attached products.
func (h *Handler) FindAllWithProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := web.ParsePagination(r, defaultPageSize)
	if err != nil {
		h.rp.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.service.FindAllWithProducts(r.Context(), limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving stores with products", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"stores": *list})
}

// FindAllWithProductsCount retrieves all stores with their product counts.
func (h *Handler) FindAllWithProductsCount(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := web.ParsePagination(r, defaultPageSize)
	if err != nil {
		h.rp.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.service.FindAllWithProductsCount(r.Context(), limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving stores with product counts", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"stores": *list})
}

// FindByID retrieves a store by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, id, err)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"store": found})
}

// FindWithProducts retrieves a store together with its products.
func (h *Handler) FindWithProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	found, err := h.service.FindWithProducts(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, id, err)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"store": found})
}

// Create handles the creation of a new store with its product plan.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto service.StoreCreateDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		if errors.Is(err, storeerrors.ErrAttachProducts) {
			// Partial success: the store row exists but the plan failed.
			h.logger.WarnContext(r.Context(), "Store created but attaching products failed", "error", err)
			h.rp.ExceptionError(w, err, map[string]any{web.KeyMessage: warnAttachFailed}, http.StatusInternalServerError)
			return
		}
		h.logger.ErrorContext(r.Context(), "Error creating store", "error", err)
		h.rp.ExceptionError(w, err, map[string]any{web.KeyMessage: "Store not created successfully"}, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Store created successfully", "ID", created.ID)
	h.rp.Respond(w, http.StatusCreated, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Store created successfully",
		"store":        created,
	})
}

// Update renames a store and replaces its product set.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}
	var dto service.StoreUpdateDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		if errors.Is(err, storeerrors.ErrStoreNotFound) {
			h.logger.WarnContext(r.Context(), "Store not found for update", "ID", id)
			h.rp.RespondError(w, http.StatusNotFound, "Store not found")
			return
		}
		if errors.Is(err, storeerrors.ErrSyncProducts) {
			h.logger.WarnContext(r.Context(), "Store updated but syncing products failed", "ID", id, "error", err)
			h.rp.ExceptionError(w, err, map[string]any{web.KeyMessage: warnSyncFailed}, http.StatusInternalServerError)
			return
		}
		h.logger.ErrorContext(r.Context(), "Error updating store", "ID", id, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Store updated successfully", "ID", id)
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Store updated successfully",
		"store":        updated,
	})
}

// Delete detaches all products and soft-deletes a store.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, id, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Store deleted successfully", "ID", id)
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Store deleted successfully",
		"store":        deleted,
	})
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, storeerrors.ErrStoreNotFound) {
		h.logger.WarnContext(r.Context(), "Store not found", "ID", id)
		h.rp.RespondError(w, http.StatusNotFound, "Store not found")
		return
	}
	h.logger.ErrorContext(r.Context(), "Error handling store request", "ID", id, "error", err)
	h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
}
