// Package repo provides store persistence over PostgreSQL, including the
// store_product pivot rows that hold per-store inventory.
package repo

import (
	"context"
	"time"
)

// Store is a store row. DeletedAt is set instead of removing the row;
// soft-deleted stores are invisible to every query here, but SoftDelete
// returns the row so callers can surface the deletion timestamp.
type Store struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// StoreProduct is a product attached to a store together with its pivot stock.
type StoreProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int32  `json:"stock"`
}

// StoreWithProducts is a store together with its attached products.
type StoreWithProducts struct {
	Store
	Products []StoreProduct `json:"products"`
}

// StoreWithCount is a store together with the number of attached products.
type StoreWithCount struct {
	Store
	ProductsCount int64 `json:"products_count"`
}

// ProductAttachment is one entry of a reconciled attachment plan.
type ProductAttachment struct {
	ProductID int64
	Stock     int32
}

// StoreRepository is an interface for store storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type StoreRepository interface {
	// FindByID retrieves a single store by its unique identifier.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Store, error)

	// Exists reports whether a non-deleted store with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// FindAll returns all stores, newest first.
	FindAll(ctx context.Context, limit, offset int32) ([]Store, error)

	// FindWithProducts retrieves a store together with its attached products.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	FindWithProducts(ctx context.Context, id int64) (*StoreWithProducts, error)

	// FindAllWithProducts returns all stores, each with its attached products.
	FindAllWithProducts(ctx context.Context, limit, offset int32) ([]StoreWithProducts, error)

	// FindAllWithProductsCount returns all stores with their attached product counts.
	FindAllWithProductsCount(ctx context.Context, limit, offset int32) ([]StoreWithCount, error)

	// Create adds a new store.
	Create(ctx context.Context, name string) (*Store, error)

	// Update renames an existing store.
	// Returns ErrStoreNotFound if no store exists with the given ID.
	Update(ctx context.Context, id int64, name string) (*Store, error)

	// SoftDelete marks the store as deleted and returns the row with
	// deleted_at set. Returns ErrStoreNotFound if no store exists.
	SoftDelete(ctx context.Context, id int64) (*Store, error)

	// AttachProduct creates one pivot row. Attaching an already attached
	// product is an error (the pivot is unique per pair).
	AttachProduct(ctx context.Context, storeID int64, attachment ProductAttachment) error

	// SyncProducts replaces the store's entire pivot set with the given plan.
	// Previously attached products not in the plan are implicitly detached.
	SyncProducts(ctx context.Context, storeID int64, plan []ProductAttachment) error

	// DetachAll removes every pivot row of the store.
	DetachAll(ctx context.Context, storeID int64) error
}
