// Package errors provides custom error types for store-related operations.
package errors

import "errors"

var ErrStoreNotFound = errors.New("store not found")
var ErrFailedToFindStore = errors.New("failed to find store")
var ErrFailedToListStores = errors.New("failed to list stores")

var ErrCreateStore = errors.New("failed to create store")
var ErrUpdateStore = errors.New("failed to update store")
var ErrDeleteStore = errors.New("failed to delete store")

var ErrAttachProducts = errors.New("store created but attaching products failed")
var ErrSyncProducts = errors.New("failed to sync store products")
var ErrDetachProducts = errors.New("failed to detach store products")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
