package domain

import "time"

// MaxRecentInboxes is how many recently used inboxes are kept per user.
const MaxRecentInboxes = 10

// RecentInbox records that a user opened an inbox address.
type RecentInbox struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	UserID   string    `json:"user_id" gorm:"uniqueIndex:idx_recent_user_address;not null"`
	Address  string    `json:"address" gorm:"uniqueIndex:idx_recent_user_address;not null"`
	LastUsed time.Time `json:"last_used" gorm:"index"`
}

// TableName specifies the table name for GORM
func (RecentInbox) TableName() string {
	return "recent_inboxes"
}
