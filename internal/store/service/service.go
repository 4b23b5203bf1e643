// Package service provides the implementation of store-related business logic.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	productrepo "github.com/storehub/storehub/internal/product/repo"
	storeerrors "github.com/storehub/storehub/internal/store/errors"
	"github.com/storehub/storehub/internal/store/repo"
)

// StoreService defines the methods for managing stores and their inventory.
type StoreService interface {
	// FindAll returns all stores, newest first.
	FindAll(ctx context.Context, limit, offset int32) (*[]StoreDto, error)

	// FindAllWithProducts returns all stores, each with its attached products.
	FindAllWithProducts(ctx context.Context, limit, offset int32) (*[]StoreWithProductsDto, error)

	// FindWithProducts retrieves a store together with its attached products.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	FindWithProducts(ctx context.Context, id int64) (*StoreWithProductsDto, error)

	// FindAllWithProductsCount returns all stores with their attached product counts.
	FindAllWithProductsCount(ctx context.Context, limit, offset int32) (*[]StoreWithCountDto, error)

	// FindByID retrieves a single store by its unique identifier.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	FindByID(ctx context.Context, id int64) (*StoreDto, error)

	// Create adds a new store and attaches the reconciled product plan.
	// A failure after the store row exists is reported as ErrAttachProducts;
	// the store is deliberately not rolled back.
	Create(ctx context.Context, store StoreCreateDto) (*StoreWithProductsDto, error)

	// Update renames a store (blank name keeps the current one) and replaces
	// its product set with the reconciled plan.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	Update(ctx context.Context, id int64, store StoreUpdateDto) (*StoreWithProductsDto, error)

	// Delete detaches every product and soft-deletes the store, returning the
	// row with deleted_at set.
	Delete(ctx context.Context, id int64) (*StoreDto, error)
}

// Service implements StoreService.
type Service struct {
	stores   repo.StoreRepository
	products productrepo.ProductRepository
}

// NewService creates a new instance of StoreService.
func NewService(stores repo.StoreRepository, products productrepo.ProductRepository) *Service {
	return &Service{
		stores:   stores,
		products: products,
	}
}

// StoreDto represents the data transfer object for a store.
type StoreDto struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

// StoreProductDto is a product attached to a store with its stock level.
type StoreProductDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int32  `json:"stock"`
}

// StoreWithProductsDto is a store together with its attached products.
type StoreWithProductsDto struct {
	StoreDto
	Products []StoreProductDto `json:"products"`
}

// StoreWithCountDto is a store together with the number of attached products.
type StoreWithCountDto struct {
	StoreDto
	ProductsCount int64 `json:"products_count"`
}

// ProductEntryDto is one element of the "products" request list. A missing
// stock defaults to zero.
type ProductEntryDto struct {
	ID    int64  `json:"id"`
	Stock *int32 `json:"stock" validate:"omitempty,gte=0"`
}

// StoreCreateDto represents the data transfer object for creating a new store.
// Products can be specified two ways: a flat productIds list (stock 0) and a
// products list with explicit stock; both feed the reconciliation plan.
type StoreCreateDto struct {
	Name       string            `json:"name" validate:"required,max=255"`
	ProductIDs []int64           `json:"productIds" validate:"omitempty,min=1,max=10,dive,gt=0"`
	Products   []ProductEntryDto `json:"products" validate:"omitempty,dive"`
}

// StoreUpdateDto represents the data transfer object for updating an existing store.
type StoreUpdateDto struct {
	Name       string            `json:"name" validate:"omitempty,max=255"`
	ProductIDs []int64           `json:"productIds" validate:"omitempty,min=1,max=10,dive,gt=0"`
	Products   []ProductEntryDto `json:"products" validate:"omitempty,dive"`
}

func (s *Service) FindAll(ctx context.Context, limit, offset int32) (*[]StoreDto, error) {
	stores, err := s.stores.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	dtos := make([]StoreDto, len(stores))
	for i := range stores {
		dtos[i] = *toDto(&stores[i])
	}
	return &dtos, nil
}

func (s *Service) FindAllWithProducts(ctx context.Context, limit, offset int32) (*[]StoreWithProductsDto, error) {
	stores, err := s.stores.FindAllWithProducts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	dtos := make([]StoreWithProductsDto, len(stores))
	for i := range stores {
		dtos[i] = *toWithProductsDto(&stores[i])
	}
	return &dtos, nil
}

func (s *Service) FindWithProducts(ctx context.Context, id int64) (*StoreWithProductsDto, error) {
	store, err := s.stores.FindWithProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWithProductsDto(store), nil
}

func (s *Service) FindAllWithProductsCount(ctx context.Context, limit, offset int32) (*[]StoreWithCountDto, error) {
	stores, err := s.stores.FindAllWithProductsCount(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	dtos := make([]StoreWithCountDto, len(stores))
	for i := range stores {
		dtos[i] = StoreWithCountDto{StoreDto: *toDto(&stores[i].Store), ProductsCount: stores[i].ProductsCount}
	}
	return &dtos, nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (*StoreDto, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(store), nil
}

func (s *Service) Create(ctx context.Context, dto StoreCreateDto) (*StoreWithProductsDto, error) {
	name := strings.TrimSpace(dto.Name)

	store, err := s.stores.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	// The store row stays even when attaching fails; the caller surfaces the
	// partial success as a warning.
	if err := s.attachPlan(ctx, store.ID, dto.ProductIDs, dto.Products); err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrAttachProducts, err)
	}

	return s.FindWithProducts(ctx, store.ID)
}

func (s *Service) Update(ctx context.Context, id int64, dto StoreUpdateDto) (*StoreWithProductsDto, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Blank name keeps the current one.
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = store.Name
	}

	if _, err := s.stores.Update(ctx, id, name); err != nil {
		return nil, err
	}

	plan, err := s.productsToAttach(ctx, dto.ProductIDs, dto.Products)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrSyncProducts, err)
	}
	if err := s.stores.SyncProducts(ctx, id, plan); err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrSyncProducts, err)
	}

	return s.FindWithProducts(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) (*StoreDto, error) {
	if _, err := s.stores.FindByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.stores.DetachAll(ctx, id); err != nil {
		return nil, err
	}

	deleted, err := s.stores.SoftDelete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(deleted), nil
}

// attachPlan reconciles the two product lists and creates one pivot row per
// plan entry.
func (s *Service) attachPlan(ctx context.Context, storeID int64, productIDs []int64, productsData []ProductEntryDto) error {
	plan, err := s.productsToAttach(ctx, productIDs, productsData)
	if err != nil {
		return err
	}
	for _, attachment := range plan {
		if err := s.stores.AttachProduct(ctx, storeID, attachment); err != nil {
			return err
		}
	}
	return nil
}

// toDto converts a repo.Store to a StoreDto.
func toDto(store *repo.Store) *StoreDto {
	if store == nil {
		return nil
	}
	dto := &StoreDto{
		ID:        store.ID,
		Name:      store.Name,
		CreatedAt: store.CreatedAt.Format(time.RFC3339),
		UpdatedAt: store.UpdatedAt.Format(time.RFC3339),
	}
	if store.DeletedAt != nil {
		deletedAt := store.DeletedAt.Format(time.RFC3339)
		dto.DeletedAt = &deletedAt
	}
	return dto
}

func toWithProductsDto(store *repo.StoreWithProducts) *StoreWithProductsDto {
	if store == nil {
		return nil
	}
	products := make([]StoreProductDto, len(store.Products))
	for i, product := range store.Products {
		products[i] = StoreProductDto{ID: product.ID, Name: product.Name, Stock: product.Stock}
	}
	return &StoreWithProductsDto{StoreDto: *toDto(&store.Store), Products: products}
}
