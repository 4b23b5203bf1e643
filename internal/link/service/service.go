// Package service provides the implementation of link-shortening business logic.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/storehub/storehub/internal/link/cache"
	linkerrors "github.com/storehub/storehub/internal/link/errors"
	"github.com/storehub/storehub/internal/link/repo"
)

// shortLinkPrefix matches the protocol-and-www prefix that is stripped off
// the full URL to derive the short link.
var shortLinkPrefix = regexp.MustCompile(`^http(s?)://(www.?)`)

// LinkService defines the methods for managing a user's shortened links.
type LinkService interface {
	// FindAllByUser returns the user's links, newest first.
	FindAllByUser(ctx context.Context, userID int64, limit, offset int32) (*[]LinkDto, error)

	// FindByID retrieves one of the user's links.
	// Returns ErrLinkNotFound when the link is missing or owned by someone else.
	FindByID(ctx context.Context, userID, id int64) (*LinkDto, error)

	// Create saves a new link, deriving the short link from the full URL.
	// Returns ErrLinkExists when the full URL is already saved and
	// ErrInvalidLink when stripping the prefix leaves nothing.
	Create(ctx context.Context, userID int64, link LinkCreateDto) (*LinkDto, error)

	// Update replaces the link's URL and re-derives the short link.
	// Returns ErrLinkNotFound when the link is missing or owned by someone else.
	Update(ctx context.Context, userID, id int64, link LinkUpdateDto) (*LinkDto, error)

	// Delete removes one of the user's links.
	Delete(ctx context.Context, userID, id int64) error

	// DeleteAll removes every link of the user.
	DeleteAll(ctx context.Context, userID int64) error

	// Search returns the user's links whose short link contains the fragment.
	Search(ctx context.Context, userID int64, fragment string) (*[]LinkDto, error)

	// Visit resolves a short link to its full URL, counting the view.
	// Returns ErrLinkNotFound when no link has the given short URL.
	Visit(ctx context.Context, shortLink string) (string, error)
}

// Service implements LinkService. The cache may be nil when Redis is disabled.
type Service struct {
	links repo.LinkRepository
	cache *cache.Cache
}

// NewService creates a new instance of LinkService.
func NewService(links repo.LinkRepository, cache *cache.Cache) *Service {
	return &Service{
		links: links,
		cache: cache,
	}
}

// LinkDto represents the data transfer object for a link.
type LinkDto struct {
	ID        int64  `json:"id"`
	ShortLink string `json:"short_link"`
	FullLink  string `json:"full_link"`
	Views     int64  `json:"views"`
}

// LinkCreateDto represents the data transfer object for saving a new link.
type LinkCreateDto struct {
	Link string `json:"link" validate:"required,url,max=2048"`
}

// LinkUpdateDto represents the data transfer object for updating a link.
type LinkUpdateDto struct {
	Link string `json:"link" validate:"required,url,max=2048"`
}

func (s *Service) FindAllByUser(ctx context.Context, userID int64, limit, offset int32) (*[]LinkDto, error) {
	links, err := s.links.FindAllByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toDtos(links), nil
}

func (s *Service) FindByID(ctx context.Context, userID, id int64) (*LinkDto, error) {
	link, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toDto(link), nil
}

func (s *Service) Create(ctx context.Context, userID int64, dto LinkCreateDto) (*LinkDto, error) {
	fullLink, shortLink, err := normalizeLink(dto.Link)
	if err != nil {
		return nil, err
	}

	if _, err := s.links.FindByFullLink(ctx, fullLink); err == nil {
		return nil, linkerrors.ErrLinkExists
	} else if !errors.Is(err, linkerrors.ErrLinkNotFound) {
		return nil, err
	}

	created, err := s.links.Create(ctx, userID, fullLink, shortLink)
	if err != nil {
		return nil, err
	}
	return toDto(created), nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, dto LinkUpdateDto) (*LinkDto, error) {
	link, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	fullLink, shortLink, err := normalizeLink(dto.Link)
	if err != nil {
		return nil, err
	}

	updated, err := s.links.Update(ctx, id, fullLink, shortLink)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, link.ShortLink, updated.ShortLink)
	return toDto(updated), nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	link, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.links.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, link.ShortLink)
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, userID int64) error {
	// The delete reports back every removed short link, so the cache is
	// invalidated for the whole set regardless of how many links the user had.
	shortLinks, err := s.links.DeleteAllByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, shortLinks...)
	return nil
}

func (s *Service) Search(ctx context.Context, userID int64, fragment string) (*[]LinkDto, error) {
	links, err := s.links.SearchByShortLink(ctx, userID, fragment)
	if err != nil {
		return nil, err
	}
	return toDtos(links), nil
}

// Visit serves the hot path: the cache answers repeat visits without touching
// the links table for the URL, while the view counter is always bumped.
func (s *Service) Visit(ctx context.Context, shortLink string) (string, error) {
	if fullLink, ok := s.cache.GetFullLink(ctx, shortLink); ok {
		if err := s.links.BumpViews(ctx, shortLink); err != nil {
			return "", err
		}
		return fullLink, nil
	}

	link, err := s.links.IncrementViews(ctx, shortLink)
	if err != nil {
		return "", err
	}
	s.cache.SetFullLink(ctx, shortLink, link.FullLink)
	return link.FullLink, nil
}

// findOwned loads a link and hides it from everyone but its owner.
func (s *Service) findOwned(ctx context.Context, userID, id int64) (*repo.Link, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.UserID != userID {
		return nil, linkerrors.ErrLinkNotFound
	}
	return link, nil
}

// normalizeLink trims a trailing slash and derives the short link by
// stripping the protocol-and-www prefix. An empty remainder is invalid.
func normalizeLink(link string) (fullLink, shortLink string, err error) {
	fullLink = strings.TrimSuffix(link, "/")
	shortLink = shortLinkPrefix.ReplaceAllString(fullLink, "")
	if shortLink == "" {
		return "", "", linkerrors.ErrInvalidLink
	}
	return fullLink, shortLink, nil
}

// toDto converts a repo.Link to a LinkDto.
func toDto(link *repo.Link) *LinkDto {
	if link == nil {
		return nil
	}
	return &LinkDto{
		ID:        link.ID,
		ShortLink: link.ShortLink,
		FullLink:  link.FullLink,
		Views:     link.Views,
	}
}

func toDtos(links []repo.Link) *[]LinkDto {
	dtos := make([]LinkDto, len(links))
	for i := range links {
		dtos[i] = *toDto(&links[i])
	}
	return &dtos
}
