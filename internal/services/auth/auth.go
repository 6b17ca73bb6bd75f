// Package auth registers users and issues access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tipsgolbr/tipsgol/internal/lib/jwt"
	"github.com/tipsgolbr/tipsgol/internal/lib/password"
	"github.com/tipsgolbr/tipsgol/internal/models"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service handles registration and login.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New returns an auth service.
func New(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register creates a free account with the user role and returns its uid.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("username", username), slog.String("uid", uid))
	return uid, nil
}

// Login checks the password and returns a signed token together with the user.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}
