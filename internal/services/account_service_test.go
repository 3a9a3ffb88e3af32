package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"irisai/internal/models"
	"irisai/internal/xerrors"
)

func TestAccountService_Create(t *testing.T) {
	f := newFixture(t)

	a := &models.Account{Name: "Umbrella"}
	require.NoError(t, f.accounts.Create(f.ctx, a))
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, models.AccountTypeClient, a.Type)
	assert.Equal(t, models.AccountStatusActive, a.Status)

	err := f.accounts.Create(f.ctx, &models.Account{Name: "umbrella"})
	asXErr(t, err, xerrors.KindConflict)

	err = f.accounts.Create(f.ctx, &models.Account{Name: "Other", Type: "Vendor"})
	asXErr(t, err, xerrors.KindBadRequest)

	err = f.accounts.Create(f.ctx, &models.Account{})
	asXErr(t, err, xerrors.KindBadRequest)

	leadID := uuid.NewString()
	manual := &models.Account{Name: "Manual", ConvertedFromLeadID: &leadID}
	require.NoError(t, f.accounts.Create(f.ctx, manual))
	assert.Nil(t, manual.ConvertedFromLeadID)
}

func TestAccountService_Update(t *testing.T) {
	f := newFixture(t)
	a := &models.Account{Name: "Umbrella"}
	require.NoError(t, f.accounts.Create(f.ctx, a))
	require.NoError(t, f.accounts.Create(f.ctx, &models.Account{Name: "Hooli"}))

	partner := models.AccountTypeChannelPartner
	industry := "Biotech"
	updated, err := f.accounts.Update(f.ctx, a.ID, AccountUpdate{Type: &partner, Industry: &industry})
	require.NoError(t, err)
	assert.Equal(t, models.AccountTypeChannelPartner, updated.Type)
	require.NotNil(t, updated.Industry)
	assert.Equal(t, "Biotech", *updated.Industry)

	rename := "Hooli"
	_, err = f.accounts.Update(f.ctx, a.ID, AccountUpdate{Name: &rename})
	asXErr(t, err, xerrors.KindConflict)

	same := "Umbrella"
	_, err = f.accounts.Update(f.ctx, a.ID, AccountUpdate{Name: &same})
	require.NoError(t, err)

	_, err = f.accounts.Update(f.ctx, uuid.NewString(), AccountUpdate{})
	asXErr(t, err, xerrors.KindNotFound)
}

func TestAccountService_ReverseConversion(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")
	conv, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)
	actor := uuid.NewString()

	res, err := f.accounts.ReverseConversion(f.ctx, conv.Account.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, conv.Account.ID, res.AccountID)
	assert.Equal(t, models.AccountStatusInactive, res.AccountStatus)
	assert.Equal(t, lead.ID, res.LeadID)
	assert.Equal(t, models.LeadStatusNew, res.LeadStatus)

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, stored.Status)

	account, err := f.accounts.Get(f.ctx, conv.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusInactive, account.Status)

	history, err := f.leads.History(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusChangeOverride, history[0].Reason)
	assert.Equal(t, models.LeadStatusConvertedToAccount, history[0].PreviousStatus)
	assert.Equal(t, models.LeadStatusNew, history[0].NewStatus)
	require.NotNil(t, history[0].ChangedBy)
	assert.Equal(t, actor, *history[0].ChangedBy)
}

func TestAccountService_ReverseConversion_NotReversible(t *testing.T) {
	f := newFixture(t)
	a := &models.Account{Name: "Umbrella"}
	require.NoError(t, f.accounts.Create(f.ctx, a))

	_, err := f.accounts.ReverseConversion(f.ctx, a.ID, "")
	xe := asXErr(t, err, xerrors.KindNotReversible)
	assert.Equal(t, a.ID, xe.Details["account_id"])

	stored, err := f.accounts.Get(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusActive, stored.Status)

	_, err = f.accounts.ReverseConversion(f.ctx, uuid.NewString(), "")
	asXErr(t, err, xerrors.KindNotFound)
}

func TestAccountService_DeleteResetsOriginatingLead(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")
	conv, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)

	require.NoError(t, f.accounts.Delete(f.ctx, conv.Account.ID, ""))

	_, err = f.accounts.Get(f.ctx, conv.Account.ID)
	asXErr(t, err, xerrors.KindNotFound)
	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, stored.Status)

	err = f.accounts.Delete(f.ctx, conv.Account.ID, "")
	asXErr(t, err, xerrors.KindNotFound)
}

func TestAccountService_List(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.accounts.Create(f.ctx, &models.Account{Name: "Umbrella"}))
	require.NoError(t, f.accounts.Create(f.ctx, &models.Account{Name: "Hooli", Status: models.AccountStatusInactive}))

	page, err := f.accounts.List(f.ctx, models.AccountFilter{Status: models.AccountStatusInactive}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Hooli", page.Items[0].Name)
	assert.Equal(t, 1, page.Total)
}
