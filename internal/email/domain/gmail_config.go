package domain

import "time"

// GmailConfigID is the key of the single catch-all credential row.
const GmailConfigID = "gmail_config"

// GmailConfig holds the long-lived refresh credential of the catch-all Gmail
// account. IsValid is cleared when Google rejects the token.
type GmailConfig struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	RefreshToken string    `json:"-" gorm:"type:text;not null"`
	Email        string    `json:"email"`
	IsValid      bool      `json:"is_valid" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GmailConfig) TableName() string {
	return "gmail_configs"
}
