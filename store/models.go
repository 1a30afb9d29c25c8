package store

import "time"

// FacebookAccount is the local record of a shop's connected Facebook user.
type FacebookAccount struct {
	ID                 string
	Shop               string
	FacebookUserID     string
	Name               string
	Email              string
	AccessToken        string
	BusinessID         string
	DefaultAdAccountID string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ConnectionStatus is the read model served to the host application.
type ConnectionStatus struct {
	Connected          bool      `json:"connected"`
	FacebookUserID     string    `json:"facebook_user_id,omitempty"`
	Name               string    `json:"name,omitempty"`
	BusinessID         string    `json:"business_id,omitempty"`
	DefaultAdAccountID string    `json:"default_ad_account_id,omitempty"`
	AdAccounts         int       `json:"ad_accounts"`
	Pages              int       `json:"pages"`
	InstagramAccounts  int       `json:"instagram_accounts"`
	ConnectedAt        time.Time `json:"connected_at,omitempty"`
}
