package usecase

import (
	"context"

	authdomain "tempmail-backend/internal/auth/domain"
	authdto "tempmail-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for account and session use cases
type AuthUsecase interface {
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(ctx context.Context, accessToken string) (*authdomain.User, error)
}
