package repository

import (
	"context"
	"time"
)

// ReadStateRepository defines the interface for the local read-state cache
type ReadStateRepository interface {
	// Track records that messageIDs were seen in inboxAddress. Existing read
	// flags are left untouched; new rows start unread.
	Track(ctx context.Context, inboxAddress string, messageIDs []string) error

	// SetRead sets the read flag of a message, creating the row if needed
	SetRead(ctx context.Context, messageID string, isRead bool) error

	// GetReadFlags returns the read flag of every known id. Unknown ids are absent.
	GetReadFlags(ctx context.Context, messageIDs []string) (map[string]bool, error)

	// DeleteOlderThan removes rows not touched since cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
