// Package errors provides custom error types for user-related operations.
package errors

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrFailedToFindUser = errors.New("failed to find user")

var ErrEmailTaken = errors.New("email is already registered")
var ErrCreateUser = errors.New("failed to create user")

var ErrInvalidCredentials = errors.New("invalid email or password")
