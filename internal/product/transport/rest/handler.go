// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	producterrors "github.com/storehub/storehub/internal/product/errors"
	"github.com/storehub/storehub/internal/product/service"
	storeerrors "github.com/storehub/storehub/internal/store/errors"
	"github.com/storehub/storehub/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const defaultPageSize = 50

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	rp       *web.Responder
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
func NewHandler(service service.ProductService, rp *web.Responder, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		rp:       rp,
		logger:   logger.With("component", "product_rest"),
	}
}

// RegisterRoutes registers the HTTP routes for products.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Post("/sell", h.Sell)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// SellDto is the request body of POST /products/sell.
type SellDto struct {
	StoreID   int64 `json:"storeId" validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// FindAll retrieves the product list.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := web.ParsePagination(r, defaultPageSize)
	if err != nil {
		h.rp.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find all products", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), limit, offset)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"products": *list})
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
			h.rp.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{"product": found})
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto service.ProductCreateDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID)
	h.rp.Respond(w, http.StatusCreated, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Product created successfully",
		"product":      created,
	})
}

// Update renames a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}
	var dto service.ProductUpdateDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			h.rp.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", id)
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Product updated successfully",
		"product":      updated,
	})
}

// Delete soft-deletes a product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.rp)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for delete", "ID", id)
			h.rp.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{
		web.KeyMessage: "Product deleted successfully",
		"product":      deleted,
	})
}

// Sell takes one unit of stock from a store/product pair.
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var dto SellDto
	if !web.DecodeAndValidate(w, r, h.rp, h.validate, h.logger, &dto) {
		return
	}

	h.logger.DebugContext(r.Context(), "Received sale request", "storeId", dto.StoreID, "productId", dto.ProductID)
	message, err := h.service.Sell(r.Context(), dto.StoreID, dto.ProductID)
	if err != nil {
		if errors.Is(err, storeerrors.ErrStoreNotFound) {
			h.logger.WarnContext(r.Context(), "Store not found for sale", "storeId", dto.StoreID)
			h.rp.RespondError(w, http.StatusNotFound, "Store not found")
			return
		}
		if errors.Is(err, producterrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for sale", "productId", dto.ProductID)
			h.rp.RespondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error selling product", "storeId", dto.StoreID, "productId", dto.ProductID, "error", err)
		h.rp.ExceptionError(w, err, nil, http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Sale processed", "storeId", dto.StoreID, "productId", dto.ProductID, "outcome", message)
	h.rp.Respond(w, http.StatusOK, web.SuccessTrue, map[string]any{web.KeyMessage: message})
}
