// Package repo provides link persistence over PostgreSQL.
package repo

import (
	"context"
	"time"
)

// Link is a shortened-link row owned by one user.
type Link struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	FullLink  string    `json:"full_link"`
	ShortLink string    `json:"short_link"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkRepository is an interface for link storage operations.
type LinkRepository interface {
	// FindAllByUser returns the user's links, newest first.
	FindAllByUser(ctx context.Context, userID int64, limit, offset int32) ([]Link, error)

	// FindByID retrieves a single link by its unique identifier.
	// Returns ErrLinkNotFound if no link exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Link, error)

	// FindByFullLink retrieves a link by its full URL.
	// Returns ErrLinkNotFound if no link exists with the given URL.
	FindByFullLink(ctx context.Context, fullLink string) (*Link, error)

	// SearchByShortLink returns the user's links whose short link contains the
	// given fragment.
	SearchByShortLink(ctx context.Context, userID int64, fragment string) ([]Link, error)

	// Create adds a new link for the user.
	Create(ctx context.Context, userID int64, fullLink, shortLink string) (*Link, error)

	// Update replaces the link's full and short URL.
	// Returns ErrLinkNotFound if no link exists with the given ID.
	Update(ctx context.Context, id int64, fullLink, shortLink string) (*Link, error)

	// Delete removes a link.
	// Returns ErrLinkNotFound if no link exists with the given ID.
	Delete(ctx context.Context, id int64) error

	// DeleteAllByUser removes every link of the user and returns the short
	// links of the deleted rows.
	DeleteAllByUser(ctx context.Context, userID int64) ([]string, error)

	// IncrementViews atomically bumps the view counter of the link with the
	// given short URL and returns the updated row.
	// Returns ErrLinkNotFound if no link exists with the given short URL.
	IncrementViews(ctx context.Context, shortLink string) (*Link, error)

	// BumpViews bumps the view counter without reading the row back. Used on
	// the cached visit path.
	BumpViews(ctx context.Context, shortLink string) error
}
