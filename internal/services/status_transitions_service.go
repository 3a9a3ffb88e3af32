package services

import (
	"fmt"
	"strings"

	"irisai/internal/models"
)

// LeadTransitions is the permitted-transitions table. Every status has an
// entry; terminal statuses map to an empty list. Order is preserved in
// rejection messages.
var LeadTransitions = map[models.LeadStatus][]models.LeadStatus{
	models.LeadStatusNew:                {models.LeadStatusQualified, models.LeadStatusContacted, models.LeadStatusUnqualified},
	models.LeadStatusQualified:          {models.LeadStatusContacted, models.LeadStatusProposalSent, models.LeadStatusUnqualified},
	models.LeadStatusContacted:          {models.LeadStatusQualified, models.LeadStatusProposalSent, models.LeadStatusNegotiation, models.LeadStatusUnqualified},
	models.LeadStatusProposalSent:       {models.LeadStatusNegotiation, models.LeadStatusConverted, models.LeadStatusLost},
	models.LeadStatusNegotiation:        {models.LeadStatusConverted, models.LeadStatusLost, models.LeadStatusProposalSent},
	models.LeadStatusConverted:          {},
	models.LeadStatusConvertedToAccount: {},
	models.LeadStatusLost:               {},
	models.LeadStatusUnqualified:        {},
}

// TransitionResult is the outcome of ValidateLeadTransition. Allowed is never
// nil so it serializes as [] for terminal statuses.
type TransitionResult struct {
	Valid     bool                `json:"valid"`
	Current   models.LeadStatus   `json:"current_status"`
	Requested models.LeadStatus   `json:"requested_status"`
	Allowed   []models.LeadStatus `json:"allowed_statuses"`
	Reason    string              `json:"reason,omitempty"`
}

// AllowedLeadTransitions returns a copy of the next states reachable from s.
func AllowedLeadTransitions(s models.LeadStatus) []models.LeadStatus {
	nexts := LeadTransitions[s]
	out := make([]models.LeadStatus, len(nexts))
	copy(out, nexts)
	return out
}

func canTransition(current, to models.LeadStatus) bool {
	for _, next := range LeadTransitions[current] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateLeadTransition decides whether current -> requested is permitted.
// It performs no I/O.
func ValidateLeadTransition(current, requested models.LeadStatus) TransitionResult {
	res := TransitionResult{
		Current:   current,
		Requested: requested,
		Allowed:   AllowedLeadTransitions(current),
	}
	if canTransition(current, requested) {
		res.Valid = true
		return res
	}

	switch {
	case len(res.Allowed) == 0:
		res.Reason = fmt.Sprintf("invalid status transition from %q to %q: %q is a terminal status and allows no further transitions",
			current, requested, current)
	default:
		names := make([]string, len(res.Allowed))
		for i, s := range res.Allowed {
			names[i] = string(s)
		}
		res.Reason = fmt.Sprintf("invalid status transition from %q to %q: allowed next statuses are %s",
			current, requested, strings.Join(names, ", "))
	}
	return res
}

func IsTerminalLeadStatus(s models.LeadStatus) bool {
	return len(LeadTransitions[s]) == 0
}

func IsConvertedLeadStatus(s models.LeadStatus) bool {
	return s == models.LeadStatusConverted || s == models.LeadStatusConvertedToAccount
}

// CanConvertLead reports whether a lead in status s may enter the conversion
// workflow, i.e. whether the table permits s -> Converted.
func CanConvertLead(s models.LeadStatus) bool {
	return canTransition(s, models.LeadStatusConverted)
}
