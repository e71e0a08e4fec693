package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
	"tempmail-backend/internal/email/repository"
	"tempmail-backend/pkg/logger"

	"github.com/google/uuid"
)

type setupUsecase struct {
	gmailConfigRepo repository.GmailConfigRepository
	stateRepo       repository.OAuthStateRepository
	oauth           OAuthFlow
	now             func() time.Time
}

func NewSetupUsecase(
	gmailConfigRepo repository.GmailConfigRepository,
	stateRepo repository.OAuthStateRepository,
	oauth OAuthFlow,
) SetupUsecase {
	return &setupUsecase{
		gmailConfigRepo: gmailConfigRepo,
		stateRepo:       stateRepo,
		oauth:           oauth,
		now:             time.Now,
	}
}

// Status reports the mailbox as configured only while its token is valid.
func (u *setupUsecase) Status(ctx context.Context) (*SetupStatus, error) {
	cfg, err := u.gmailConfigRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &SetupStatus{}, nil
	}
	return &SetupStatus{
		Configured: cfg.RefreshToken != "" && cfg.IsValid,
		Email:      cfg.Email,
	}, nil
}

func (u *setupUsecase) BeginSetup(ctx context.Context, userID string) (string, string, error) {
	now := u.now()
	state := &emaildomain.OAuthState{
		State:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(emaildomain.OAuthStateTTL),
	}
	if err := u.stateRepo.Create(ctx, state); err != nil {
		return "", "", fmt.Errorf("failed to store setup state: %w", err)
	}
	return u.oauth.AuthCodeURL(state.State), state.State, nil
}

func (u *setupUsecase) CompleteCallback(ctx context.Context, state, code string) (*SetupStatus, error) {
	ok, err := u.stateRepo.Consume(ctx, strings.TrimSpace(state), u.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check setup state: %w", err)
	}
	if !ok {
		logger.Gmail().Warn("Rejected setup callback with unknown state")
		return nil, emaildomain.ErrInvalidOAuthState
	}
	return u.CompleteSetup(ctx, code)
}

func (u *setupUsecase) CompleteSetup(ctx context.Context, code string) (*SetupStatus, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &emaildomain.ValidationError{Field: "code", Message: "Authorization code is required"}
	}

	refreshToken, email, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Gmail().WithError(err).Error("Gmail code exchange failed")
		return nil, err
	}
	if refreshToken == "" {
		return nil, errors.New("no refresh token received")
	}

	if err := u.gmailConfigRepo.Save(ctx, refreshToken, email); err != nil {
		return nil, fmt.Errorf("failed to save gmail configuration: %w", err)
	}

	account := email
	if account == "" {
		account = "unknown"
	}
	logger.Gmail().WithField("email", account).Info("Gmail configuration saved")
	return &SetupStatus{Configured: true, Email: email}, nil
}

func (u *setupUsecase) Disconnect(ctx context.Context) error {
	if err := u.gmailConfigRepo.Invalidate(ctx); err != nil {
		return err
	}
	logger.Gmail().Info("Gmail token invalidated on request")
	return nil
}
