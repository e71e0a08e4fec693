package repository

import (
	"context"

	emaildomain "tempmail-backend/internal/email/domain"
)

// GmailConfigRepository stores the single catch-all Gmail credential
type GmailConfigRepository interface {
	// Get returns the stored credential, or nil when none exists
	Get(ctx context.Context) (*emaildomain.GmailConfig, error)
	// Save stores a fresh credential and marks it valid
	Save(ctx context.Context, refreshToken, email string) error
	// Invalidate flags the credential as rejected by Google
	Invalidate(ctx context.Context) error
	// Delete removes the credential
	Delete(ctx context.Context) error
}
