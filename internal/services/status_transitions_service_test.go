package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisai/internal/models"
)

func TestLeadTransitionsTableIsTotal(t *testing.T) {
	for _, s := range models.LeadStatuses {
		nexts, ok := LeadTransitions[s]
		require.True(t, ok, "missing table entry for %q", s)
		assert.NotNil(t, nexts, "nil entry for %q", s)
	}
	assert.Len(t, LeadTransitions, len(models.LeadStatuses))
}

func TestTerminalStatusesAreClosed(t *testing.T) {
	terminal := []models.LeadStatus{
		models.LeadStatusConverted,
		models.LeadStatusConvertedToAccount,
		models.LeadStatusLost,
		models.LeadStatusUnqualified,
	}
	for _, from := range terminal {
		assert.True(t, IsTerminalLeadStatus(from))
		for _, to := range models.LeadStatuses {
			res := ValidateLeadTransition(from, to)
			assert.False(t, res.Valid, "%q -> %q must be rejected", from, to)
			assert.NotNil(t, res.Allowed)
			assert.Empty(t, res.Allowed)
		}
	}
}

func TestValidateLeadTransition(t *testing.T) {
	tests := []struct {
		name      string
		from, to  models.LeadStatus
		valid     bool
		reasonHas string
	}{
		{name: "new to qualified", from: models.LeadStatusNew, to: models.LeadStatusQualified, valid: true},
		{name: "new to contacted", from: models.LeadStatusNew, to: models.LeadStatusContacted, valid: true},
		{name: "contacted to negotiation", from: models.LeadStatusContacted, to: models.LeadStatusNegotiation, valid: true},
		{name: "negotiation back to proposal", from: models.LeadStatusNegotiation, to: models.LeadStatusProposalSent, valid: true},
		{name: "proposal to converted", from: models.LeadStatusProposalSent, to: models.LeadStatusConverted, valid: true},
		{name: "new to lost", from: models.LeadStatusNew, to: models.LeadStatusLost, valid: false,
			reasonHas: "allowed next statuses are Qualified, Contacted, Unqualified"},
		{name: "same state", from: models.LeadStatusQualified, to: models.LeadStatusQualified, valid: false,
			reasonHas: "Contacted, Proposal Sent, Unqualified"},
		{name: "converted to converted", from: models.LeadStatusConverted, to: models.LeadStatusConverted, valid: false,
			reasonHas: "terminal status"},
		{name: "unqualified to new", from: models.LeadStatusUnqualified, to: models.LeadStatusNew, valid: false,
			reasonHas: "terminal status"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateLeadTransition(tc.from, tc.to)
			assert.Equal(t, tc.valid, res.Valid)
			assert.Equal(t, tc.from, res.Current)
			assert.Equal(t, tc.to, res.Requested)
			if tc.valid {
				assert.Empty(t, res.Reason)
				return
			}
			assert.Contains(t, res.Reason, tc.reasonHas)
		})
	}
}

func TestAllowedLeadTransitionsReturnsCopy(t *testing.T) {
	allowed := AllowedLeadTransitions(models.LeadStatusNew)
	allowed[0] = models.LeadStatusLost
	assert.Equal(t, models.LeadStatusQualified, LeadTransitions[models.LeadStatusNew][0])
}

func TestCanConvertLead(t *testing.T) {
	convertible := map[models.LeadStatus]bool{
		models.LeadStatusProposalSent: true,
		models.LeadStatusNegotiation:  true,
	}
	for _, s := range models.LeadStatuses {
		assert.Equal(t, convertible[s], CanConvertLead(s), "status %q", s)
	}
}

func TestParseLeadStatus(t *testing.T) {
	s, ok := models.ParseLeadStatus("  proposal sent ")
	require.True(t, ok)
	assert.Equal(t, models.LeadStatusProposalSent, s)

	_, ok = models.ParseLeadStatus("Archived")
	assert.False(t, ok)
}
