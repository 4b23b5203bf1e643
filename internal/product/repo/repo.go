// Package repo provides product persistence over PostgreSQL.
package repo

import (
	"context"
	"time"
)

// Product is a catalog product row. DeletedAt is set instead of removing the
// row; soft-deleted products are invisible to every query here.
type Product struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ProductRepository is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type ProductRepository interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindAll returns all products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, limit, offset int32) ([]Product, error)

	// Exists reports whether a non-deleted product with the given ID exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// Create adds a new product.
	Create(ctx context.Context, name string) (*Product, error)

	// Update renames an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, name string) (*Product, error)

	// SoftDelete marks the product as deleted and returns the row with
	// deleted_at set. Returns ErrProductNotFound if no product exists.
	SoftDelete(ctx context.Context, id int64) (*Product, error)

	// FindStock returns the pivot stock for (storeID, productID).
	// Returns ErrStockNotFound when no pivot row exists.
	FindStock(ctx context.Context, storeID, productID int64) (int32, error)

	// DecrementStock atomically takes one unit of stock from the pivot row.
	// Returns the post-decrement stock, or ErrOutOfStock when the row is
	// missing or already at zero.
	DecrementStock(ctx context.Context, storeID, productID int64) (int32, error)
}
