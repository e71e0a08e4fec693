package domain

import "time"

// OAuthStateTTL bounds how long an issued setup state can be redeemed.
const OAuthStateTTL = 10 * time.Minute

// OAuthState is a one-time value handed to Google with the consent URL and
// checked when Google redirects back to the callback.
type OAuthState struct {
	State     string    `json:"state" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (OAuthState) TableName() string {
	return "oauth_states"
}
