// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrFailedToFindProduct = errors.New("failed to find product")
var ErrFailedToListProducts = errors.New("failed to list products")

var ErrCreateProduct = errors.New("failed to create product")
var ErrUpdateProduct = errors.New("failed to update product")
var ErrDeleteProduct = errors.New("failed to delete product")

var ErrStockNotFound = errors.New("no stock record for this store and product")
var ErrOutOfStock = errors.New("product is out of stock at this store")
var ErrFailedToFindStock = errors.New("failed to find stock")
var ErrDecrementStock = errors.New("failed to decrement stock")
