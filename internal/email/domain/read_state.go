package domain

import "time"

// ReadState is the per-message read flag. Gmail has no read state per
// virtual inbox, so it is kept locally and merged into fetched emails.
type ReadState struct {
	MessageID    string    `json:"message_id" gorm:"primaryKey"`
	InboxAddress string    `json:"inbox_address" gorm:"index"`
	IsRead       bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"index"`
}

// TableName specifies the table name for GORM
func (ReadState) TableName() string {
	return "read_states"
}
