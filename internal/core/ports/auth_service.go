package ports

import (
	"context"

	"github.com/sweetshop/inventory-system/internal/core/domain"
)

// AuthService defines registration, login and identity lookup. Register and
// Login return a freshly issued session token alongside the user.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// TokenVerifier resolves a signed session token back into its claims.
type TokenVerifier interface {
	Verify(token string) (*domain.TokenClaims, error)
}
