// Package errors provides custom error types for link-related operations.
package errors

import "errors"

var ErrLinkNotFound = errors.New("link not found")
var ErrFailedToFindLink = errors.New("failed to find link")
var ErrFailedToListLinks = errors.New("failed to list links")

var ErrLinkExists = errors.New("link already exists")
var ErrInvalidLink = errors.New("domain is required")

var ErrCreateLink = errors.New("failed to create link")
var ErrUpdateLink = errors.New("failed to update link")
var ErrDeleteLink = errors.New("failed to delete link")
