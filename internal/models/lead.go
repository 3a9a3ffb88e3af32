package models

import (
	"strings"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew                LeadStatus = "New"
	LeadStatusContacted          LeadStatus = "Contacted"
	LeadStatusQualified          LeadStatus = "Qualified"
	LeadStatusProposalSent       LeadStatus = "Proposal Sent"
	LeadStatusNegotiation        LeadStatus = "Negotiation"
	LeadStatusConverted          LeadStatus = "Converted"
	LeadStatusConvertedToAccount LeadStatus = "Converted to Account"
	LeadStatusLost               LeadStatus = "Lost"
	LeadStatusUnqualified        LeadStatus = "Unqualified"
)

// LeadStatuses lists every known status in pipeline order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposalSent,
	LeadStatusNegotiation,
	LeadStatusConverted,
	LeadStatusConvertedToAccount,
	LeadStatusLost,
	LeadStatusUnqualified,
}

// ParseLeadStatus matches s against the known statuses ignoring case and
// surrounding whitespace.
func ParseLeadStatus(s string) (LeadStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range LeadStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

type Lead struct {
	ID             string     `json:"id"`
	CompanyName    string     `json:"company_name"`
	ContactName    string     `json:"contact_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	LinkedInURL    *string    `json:"linkedin_url,omitempty"`
	Country        *string    `json:"country,omitempty"`
	Status         LeadStatus `json:"status"`
	Notes          *string    `json:"notes,omitempty"`
	AssignedUserID *string    `json:"assigned_user_id,omitempty"`
	CreatedBy      *string    `json:"created_by,omitempty"`
	ConvertedAt    *time.Time `json:"converted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LeadFilter narrows lead listings. Zero values mean "no filter".
type LeadFilter struct {
	Status         LeadStatus
	AssignedUserID string
	Country        string
	Query          string
	Limit          int
	Offset         int
}
