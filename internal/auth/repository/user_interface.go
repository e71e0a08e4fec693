package repository

import (
	"context"

	authdomain "tempmail-backend/internal/auth/domain"
)

// UserRepository defines the interface for account and session storage
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByID(ctx context.Context, id string) (*authdomain.User, error)

	// ReplaceRefreshToken stores a new refresh token and prunes the user's
	// expired ones. Other live tokens stay valid.
	ReplaceRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error
}
