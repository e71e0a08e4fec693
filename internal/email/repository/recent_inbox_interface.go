package repository

import (
	"context"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
)

// RecentInboxRepository keeps each user's recently opened inbox addresses
type RecentInboxRepository interface {
	// Touch records a use of address and trims the history to MaxRecentInboxes
	Touch(ctx context.Context, userID, address string, at time.Time) error
	// List returns the history, most recent first
	List(ctx context.Context, userID string) ([]emaildomain.RecentInbox, error)
	Delete(ctx context.Context, userID, address string) error
	Clear(ctx context.Context, userID string) error
}
