package login

import (
	"context"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

// Service authenticates users.
type Service interface {
	Login(ctx context.Context, username, password string) (string, *models.User, error)
}
