package usecase

import (
	"context"

	emaildomain "tempmail-backend/internal/email/domain"
	gmailpkg "tempmail-backend/pkg/gmail"

	"google.golang.org/api/gmail/v1"
)

// FetchOptions selects the virtual inbox to read
type FetchOptions struct {
	InboxName string
	Domain    string
	// MaxResults caps the returned emails; <= 0 means DefaultMaxResults
	MaxResults int
	// ExcludeExpired drops mail older than the retention window
	ExcludeExpired bool
}

// EmailUsecase defines the interface for email use cases
type EmailUsecase interface {
	FetchEmails(ctx context.Context, opts FetchOptions) ([]*emaildomain.Email, error)
	GetEmailByID(ctx context.Context, id, targetAddress string, excludeExpired bool) (*emaildomain.Email, error)
	CountEmails(ctx context.Context, inboxName, domain string, excludeExpired bool) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkUnread(ctx context.Context, id string) error
	GetReadFlags(ctx context.Context, ids []string) (map[string]bool, error)
	ParseInboxAddress(address string) (emaildomain.Inbox, error)
	AllowedDomains() []string
	RetentionHours() uint
}

// SetupStatus reports whether the catch-all mailbox is connected
type SetupStatus struct {
	Configured bool   `json:"configured"`
	Email      string `json:"email,omitempty"`
}

// SetupUsecase drives the one-time Gmail consent flow
type SetupUsecase interface {
	Status(ctx context.Context) (*SetupStatus, error)
	// BeginSetup issues a one-time state for userID and returns the consent
	// URL carrying it
	BeginSetup(ctx context.Context, userID string) (authURL, state string, err error)
	// CompleteCallback redeems state before exchanging code. An unknown,
	// reused or expired state fails with ErrInvalidOAuthState.
	CompleteCallback(ctx context.Context, state, code string) (*SetupStatus, error)
	CompleteSetup(ctx context.Context, code string) (*SetupStatus, error)
	Disconnect(ctx context.Context) error
}

// RecentUsecase manages the per-user history of opened inboxes
type RecentUsecase interface {
	Touch(ctx context.Context, userID, address string) error
	List(ctx context.Context, userID string) ([]*emaildomain.RecentInbox, error)
	Remove(ctx context.Context, userID, address string) error
	Clear(ctx context.Context, userID string) error
}

// MailClient is one authorized session against the catch-all mailbox
type MailClient interface {
	ListLabels(ctx context.Context) ([]gmailpkg.Label, error)
	ListMessageIDs(ctx context.Context, labelID string, max int) ([]string, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
}

// MailProvider opens MailClients from a stored refresh token
type MailProvider interface {
	Connect(ctx context.Context, refreshToken string) (MailClient, error)
}

// OAuthFlow performs the consent and code exchange steps of setup
type OAuthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (refreshToken, email string, err error)
}
