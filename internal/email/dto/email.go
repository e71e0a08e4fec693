package dto

import (
	"time"

	emaildomain "tempmail-backend/internal/email/domain"
)

type EmailsResponse struct {
	Address    string               `json:"address"`
	Emails     []*emaildomain.Email `json:"emails"`
	TotalCount int                  `json:"totalCount"`
	HasMore    bool                 `json:"hasMore"`
}

type CountResponse struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type RecentInbox struct {
	Address  string `json:"address"`
	LastUsed string `json:"lastUsed"`
}

type RecentInboxesResponse struct {
	Inboxes []RecentInbox `json:"inboxes"`
}

// NewRecentInboxesResponse formats history entries with RFC 3339 timestamps
func NewRecentInboxesResponse(entries []*emaildomain.RecentInbox) RecentInboxesResponse {
	resp := RecentInboxesResponse{Inboxes: make([]RecentInbox, 0, len(entries))}
	for _, e := range entries {
		resp.Inboxes = append(resp.Inboxes, RecentInbox{
			Address:  e.Address,
			LastUsed: e.LastUsed.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

type SettingsResponse struct {
	AllowedDomains   []string `json:"allowedDomains"`
	EmailExpiryHours uint     `json:"emailExpiryHours"`
}
