// Package service provides the implementation of user account and
// authentication business logic.
package service

import (
	"context"
	"errors"
	"time"

	usererrors "github.com/storehub/storehub/internal/user/errors"
	"github.com/storehub/storehub/internal/user/repo"
	"github.com/storehub/storehub/pkg/auth"

	"golang.org/x/crypto/bcrypt"
)

// UserService defines the methods for registering and authenticating users.
type UserService interface {
	// Register creates a new account and signs an access token for it.
	// Returns ErrEmailTaken when the email is already registered.
	Register(ctx context.Context, user UserRegisterDto) (*AuthDto, error)

	// Login verifies the credentials and signs an access token.
	// Returns ErrInvalidCredentials on unknown email or wrong password.
	Login(ctx context.Context, credentials UserLoginDto) (*AuthDto, error)

	// FindByID retrieves a single user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id int64) (*UserDto, error)
}

// Service implements UserService.
type Service struct {
	users  repo.UserRepository
	tokens *auth.Manager
}

// NewService creates a new instance of UserService.
func NewService(users repo.UserRepository, tokens *auth.Manager) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// UserDto represents the data transfer object for a user. The password hash
// never leaves the service layer.
type UserDto struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// AuthDto couples a user with a freshly signed access token.
type AuthDto struct {
	User  UserDto `json:"user"`
	Token string  `json:"token"`
}

// UserRegisterDto represents the data transfer object for registering a user.
type UserRegisterDto struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLoginDto represents the data transfer object for logging in.
type UserLoginDto struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Service) Register(ctx context.Context, dto UserRegisterDto) (*AuthDto, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, dto.Name, dto.Email, string(hash))
	if err != nil {
		return nil, err
	}

	return s.withToken(user)
}

func (s *Service) Login(ctx context.Context, dto UserLoginDto) (*AuthDto, error) {
	user, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, usererrors.ErrUserNotFound) {
			return nil, usererrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, usererrors.ErrInvalidCredentials
	}

	return s.withToken(user)
}

func (s *Service) FindByID(ctx context.Context, id int64) (*UserDto, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(user), nil
}

func (s *Service) withToken(user *repo.User) (*AuthDto, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthDto{User: *toDto(user), Token: token}, nil
}

// toDto converts a repo.User to a UserDto.
func toDto(user *repo.User) *UserDto {
	if user == nil {
		return nil
	}
	return &UserDto{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
