// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	producterrors "github.com/storehub/storehub/internal/product/errors"
	"github.com/storehub/storehub/internal/product/repo"
	storeerrors "github.com/storehub/storehub/internal/store/errors"
	storerepo "github.com/storehub/storehub/internal/store/repo"
)

// StockRunningLowLimit is the post-sale stock level at or below which the
// sale message warns about low stock.
const StockRunningLowLimit = 5

// User-facing sale outcome messages.
const (
	MsgSold       = "Product sold successfully."
	MsgNoStock    = "The store does not have any stock of this product."
	MsgRanOut     = "Product sold successfully. The store run out of this product"
	msgRunningLow = "Product sold successfully. The store is running low on stock of this product, remaining: %d units"
)

// ProductService defines the methods for managing products and selling them.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns all products, newest first.
	FindAll(ctx context.Context, limit, offset int32) (*[]ProductDto, error)

	// Create adds a new product.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update renames an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error)

	// Delete soft-deletes a product and returns it with deleted_at set.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id int64) (*ProductDto, error)

	// Sell takes one unit of stock from the (store, product) pivot row and
	// classifies the outcome into a user-facing message.
	// Returns ErrStoreNotFound / ErrProductNotFound when either side is missing;
	// every other outcome, including no stock at all, is a successful sale attempt.
	Sell(ctx context.Context, storeID, productID int64) (string, error)
}

// Service implements ProductService.
type Service struct {
	products repo.ProductRepository
	stores   storerepo.StoreRepository
}

// NewService creates a new instance of ProductService.
func NewService(products repo.ProductRepository, stores storerepo.StoreRepository) *Service {
	return &Service{
		products: products,
		stores:   stores,
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ProductUpdateDto represents the data transfer object for updating an existing product.
type ProductUpdateDto struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

func (s *Service) FindAll(ctx context.Context, limit, offset int32) (*[]ProductDto, error) {
	products, err := s.products.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return &dtos, nil
}

func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	created, err := s.products.Create(ctx, product.Name)
	if err != nil {
		return nil, err
	}
	return toDto(created), nil
}

func (s *Service) Update(ctx context.Context, id int64, product ProductUpdateDto) (*ProductDto, error) {
	updated, err := s.products.Update(ctx, id, product.Name)
	if err != nil {
		return nil, err
	}
	return toDto(updated), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (*ProductDto, error) {
	deleted, err := s.products.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(deleted), nil
}

// Sell implements the sale flow: both parents must exist, a missing pivot row
// and a zero-stock pivot row are the same successful "no stock" outcome, and
// the decrement itself is atomic at the storage layer. The post-decrement
// stock picks the message.
func (s *Service) Sell(ctx context.Context, storeID, productID int64) (string, error) {
	storeExists, err := s.stores.Exists(ctx, storeID)
	if err != nil {
		return "", err
	}
	if !storeExists {
		return "", storeerrors.ErrStoreNotFound
	}

	productExists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return "", err
	}
	if !productExists {
		return "", producterrors.ErrProductNotFound
	}

	stock, err := s.products.FindStock(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, producterrors.ErrStockNotFound) {
			return MsgNoStock, nil
		}
		return "", err
	}
	if stock <= 0 {
		return MsgNoStock, nil
	}

	remaining, err := s.products.DecrementStock(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, producterrors.ErrOutOfStock) {
			// Raced to zero between the read and the decrement.
			return MsgNoStock, nil
		}
		return "", err
	}

	switch {
	case remaining == 0:
		return MsgRanOut, nil
	case remaining <= StockRunningLowLimit:
		return fmt.Sprintf(msgRunningLow, remaining), nil
	default:
		return MsgSold, nil
	}
}

// toDto converts a repo.Product to a ProductDto.
func toDto(product *repo.Product) *ProductDto {
	if product == nil {
		return nil
	}
	dto := &ProductDto{
		ID:        product.ID,
		Name:      product.Name,
		CreatedAt: product.CreatedAt.Format(time.RFC3339),
		UpdatedAt: product.UpdatedAt.Format(time.RFC3339),
	}
	if product.DeletedAt != nil {
		deletedAt := product.DeletedAt.Format(time.RFC3339)
		dto.DeletedAt = &deletedAt
	}
	return dto
}
