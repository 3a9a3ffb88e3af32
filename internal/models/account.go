package models

import "time"

type AccountType string

const (
	AccountTypeClient         AccountType = "Client"
	AccountTypeChannelPartner AccountType = "Channel Partner"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "Active"
	AccountStatusInactive AccountStatus = "Inactive"
)

// Account is an active commercial relationship, created directly or derived
// from a converted lead.
type Account struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Type                AccountType   `json:"type"`
	Status              AccountStatus `json:"status"`
	Description         *string       `json:"description,omitempty"`
	ContactName         *string       `json:"contact_name,omitempty"`
	ContactEmail        *string       `json:"contact_email,omitempty"`
	ContactPhone        *string       `json:"contact_phone,omitempty"`
	Industry            *string       `json:"industry,omitempty"`
	ConvertedFromLeadID *string       `json:"converted_from_lead_id,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type AccountFilter struct {
	Status AccountStatus
	Type   AccountType
	Query  string
	Limit  int
	Offset int
}
