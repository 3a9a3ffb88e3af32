package models

import "time"

// StatusChangeReason records which code path wrote a lead status.
type StatusChangeReason string

const (
	StatusChangeTransition StatusChangeReason = "transition"
	StatusChangeConversion StatusChangeReason = "conversion"
	// StatusChangeOverride marks writes that bypass the transition table.
	StatusChangeOverride StatusChangeReason = "override"
)

// LeadStatusChange is one row of a lead's status audit trail.
type LeadStatusChange struct {
	ID             string             `json:"id"`
	LeadID         string             `json:"lead_id"`
	PreviousStatus LeadStatus         `json:"previous_status"`
	NewStatus      LeadStatus         `json:"new_status"`
	Notes          *string            `json:"notes,omitempty"`
	ChangedBy      *string            `json:"changed_by,omitempty"`
	Reason         StatusChangeReason `json:"reason"`
	CreatedAt      time.Time          `json:"created_at"`
}
