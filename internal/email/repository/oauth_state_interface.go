package repository

import (
	"context"
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
)

// OAuthStateRepository stores setup states between the consent redirect and
// the callback
type OAuthStateRepository interface {
	// Create stores a new state and prunes expired ones
	Create(ctx context.Context, state *emaildomain.OAuthState) error
	// Consume deletes state and reports whether it existed and was still live at now
	Consume(ctx context.Context, state string, now time.Time) (bool, error)
}
