package register

import (
	"context"
)

// Service creates accounts.
type Service interface {
	Register(ctx context.Context, email, username, password string) (string, error)
}
