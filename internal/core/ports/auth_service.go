package ports

import (
	"context"

	"github.com/prolink/credits-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role, accountID string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
