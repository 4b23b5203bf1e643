package service

import (
	"context"
	"fmt"
	"testing"

	linkerrors "github.com/storehub/storehub/internal/link/errors"
	"github.com/storehub/storehub/internal/link/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLinkRepo is a mock implementation of the LinkRepository interface
type mockLinkRepo struct {
	link      *repo.Link
	links     []repo.Link
	findErr   error
	dupErr    error
	createErr error
	updateErr error
	deleteErr error

	createdFull  string
	createdShort string
	updatedFull  string
	updatedShort string
	deletedIDs   []int64
	deletedUser  int64
	bumped       []string
}

func (m *mockLinkRepo) FindAllByUser(_ context.Context, _ int64, _, _ int32) ([]repo.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.links, nil
}

func (m *mockLinkRepo) FindByID(_ context.Context, _ int64) (*repo.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.link, nil
}

func (m *mockLinkRepo) FindByFullLink(_ context.Context, _ string) (*repo.Link, error) {
	if m.dupErr != nil {
		return nil, m.dupErr
	}
	return m.link, nil
}

func (m *mockLinkRepo) SearchByShortLink(_ context.Context, _ int64, _ string) ([]repo.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.links, nil
}

func (m *mockLinkRepo) Create(_ context.Context, userID int64, fullLink, shortLink string) (*repo.Link, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createdFull = fullLink
	m.createdShort = shortLink
	return &repo.Link{ID: 1, UserID: userID, FullLink: fullLink, ShortLink: shortLink}, nil
}

func (m *mockLinkRepo) Update(_ context.Context, id int64, fullLink, shortLink string) (*repo.Link, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updatedFull = fullLink
	m.updatedShort = shortLink
	return &repo.Link{ID: id, UserID: m.link.UserID, FullLink: fullLink, ShortLink: shortLink}, nil
}

func (m *mockLinkRepo) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockLinkRepo) DeleteAllByUser(_ context.Context, userID int64) ([]string, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	m.deletedUser = userID
	shortLinks := make([]string, len(m.links))
	for i := range m.links {
		shortLinks[i] = m.links[i].ShortLink
	}
	return shortLinks, nil
}

func (m *mockLinkRepo) IncrementViews(_ context.Context, shortLink string) (*repo.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.bumped = append(m.bumped, shortLink)
	return m.link, nil
}

func (m *mockLinkRepo) BumpViews(_ context.Context, shortLink string) error {
	m.bumped = append(m.bumped, shortLink)
	return nil
}

func Test_LinkService_Create(t *testing.T) {
	testCases := []struct {
		name          string
		link          string
		mockRepo      mockLinkRepo
		expectedErr   error
		expectedFull  string
		expectedShort string
	}{
		{
			name:          "Success - trailing slash trimmed, prefix stripped",
			link:          "https://www.example.com/",
			mockRepo:      mockLinkRepo{dupErr: linkerrors.ErrLinkNotFound},
			expectedFull:  "https://www.example.com",
			expectedShort: "example.com",
		},
		{
			name:          "Success - no www prefix kept as is",
			link:          "https://example.com/page",
			mockRepo:      mockLinkRepo{dupErr: linkerrors.ErrLinkNotFound},
			expectedFull:  "https://example.com/page",
			expectedShort: "https://example.com/page",
		},
		{
			name:        "Error - nothing left after the prefix",
			link:        "https://www./",
			mockRepo:    mockLinkRepo{dupErr: linkerrors.ErrLinkNotFound},
			expectedErr: linkerrors.ErrInvalidLink,
		},
		{
			name: "Error - url already saved",
			link: "https://www.example.com",
			mockRepo: mockLinkRepo{
				link: &repo.Link{ID: 7, UserID: 2, FullLink: "https://www.example.com", ShortLink: "example.com"},
			},
			expectedErr: linkerrors.ErrLinkExists,
		},
		{
			name:        "Error - repo create fails",
			link:        "https://www.example.com",
			mockRepo:    mockLinkRepo{dupErr: linkerrors.ErrLinkNotFound, createErr: linkerrors.ErrCreateLink},
			expectedErr: linkerrors.ErrCreateLink,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(&tc.mockRepo, nil)

			// when
			created, err := service.Create(context.Background(), 1, LinkCreateDto{Link: tc.link})

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedFull, created.FullLink)
			assert.Equal(t, tc.expectedShort, created.ShortLink)
			assert.Equal(t, tc.expectedFull, tc.mockRepo.createdFull)
			assert.Equal(t, tc.expectedShort, tc.mockRepo.createdShort)
		})
	}
}

func Test_LinkService_Ownership(t *testing.T) {
	owned := &repo.Link{ID: 10, UserID: 1, FullLink: "https://www.example.com", ShortLink: "example.com"}

	testCases := []struct {
		name        string
		userID      int64
		expectedErr error
	}{
		{name: "Success - owner sees the link", userID: 1},
		{name: "Error - other users get not found", userID: 2, expectedErr: linkerrors.ErrLinkNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockRepo := mockLinkRepo{link: owned}
			service := NewService(&mockRepo, nil)

			// when
			found, err := service.FindByID(context.Background(), tc.userID, owned.ID)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, owned.ID, found.ID)
		})
	}
}

func Test_LinkService_Update(t *testing.T) {
	// given
	mockRepo := mockLinkRepo{
		link: &repo.Link{ID: 10, UserID: 1, FullLink: "https://www.old.com", ShortLink: "old.com"},
	}
	service := NewService(&mockRepo, nil)

	// when
	updated, err := service.Update(context.Background(), 1, 10, LinkUpdateDto{Link: "https://www.new.com/"})

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://www.new.com", updated.FullLink)
	assert.Equal(t, "new.com", updated.ShortLink)
	assert.Equal(t, "https://www.new.com", mockRepo.updatedFull)
	assert.Equal(t, "new.com", mockRepo.updatedShort)
}

func Test_LinkService_Delete(t *testing.T) {
	testCases := []struct {
		name        string
		mockRepo    mockLinkRepo
		expectedErr error
	}{
		{
			name: "Success - owned link deleted",
			mockRepo: mockLinkRepo{
				link: &repo.Link{ID: 10, UserID: 1, ShortLink: "example.com"},
			},
		},
		{
			name:        "Error - link not found",
			mockRepo:    mockLinkRepo{findErr: linkerrors.ErrLinkNotFound},
			expectedErr: linkerrors.ErrLinkNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(&tc.mockRepo, nil)

			// when
			err := service.Delete(context.Background(), 1, 10)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []int64{10}, tc.mockRepo.deletedIDs)
		})
	}
}

func Test_LinkService_DeleteAll(t *testing.T) {
	// given: a link set far beyond any listing page size, and a listing that
	// errors out. The delete gets its invalidation set from the delete itself.
	links := make([]repo.Link, 1500)
	for i := range links {
		links[i] = repo.Link{ID: int64(i + 1), UserID: 1, ShortLink: fmt.Sprintf("site-%d.com", i+1)}
	}
	mockRepo := mockLinkRepo{links: links, findErr: linkerrors.ErrFailedToListLinks}
	service := NewService(&mockRepo, nil)

	// when
	err := service.DeleteAll(context.Background(), 1)

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(1), mockRepo.deletedUser)
}

func Test_LinkService_Visit(t *testing.T) {
	testCases := []struct {
		name        string
		mockRepo    mockLinkRepo
		expectedErr error
		expected    string
	}{
		{
			name: "Success - view counted and full link returned",
			mockRepo: mockLinkRepo{
				link: &repo.Link{ID: 1, UserID: 1, FullLink: "https://www.example.com", ShortLink: "example.com", Views: 4},
			},
			expected: "https://www.example.com",
		},
		{
			name:        "Error - unknown short link",
			mockRepo:    mockLinkRepo{findErr: linkerrors.ErrLinkNotFound},
			expectedErr: linkerrors.ErrLinkNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(&tc.mockRepo, nil)

			// when
			fullLink, err := service.Visit(context.Background(), "example.com")

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, fullLink)
			assert.Equal(t, []string{"example.com"}, tc.mockRepo.bumped)
		})
	}
}
