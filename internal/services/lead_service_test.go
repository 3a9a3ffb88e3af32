package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"irisai/internal/models"
	"irisai/internal/repositories/memory"
	"irisai/internal/xerrors"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []models.Notification
	err error
	// block, when set, holds every delivery until it is closed
	block chan struct{}
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Notify(_ context.Context, _ models.User, n models.Notification) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	leads    *LeadService
	accounts *AccountService
	notes    *NotificationService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()
	notifier := &recordingNotifier{}
	notes := NewNotificationService(store, logger, notifier)
	return &fixture{
		ctx:      context.Background(),
		store:    store,
		leads:    NewLeadService(store, notes, logger),
		accounts: NewAccountService(store, logger),
		notes:    notes,
		notifier: notifier,
	}
}

func (f *fixture) seedUser(name string) models.User {
	u := models.User{ID: uuid.NewString(), Name: name, Email: name + "@iris.ai", RoleID: 2}
	f.store.AddUser(u)
	return u
}

func (f *fixture) createLead(t *testing.T, company, email string) *models.Lead {
	t.Helper()
	lead := &models.Lead{CompanyName: company, ContactName: "Jane Doe", Email: email}
	require.NoError(t, f.leads.Create(f.ctx, lead))
	return lead
}

func (f *fixture) moveTo(t *testing.T, id string, path ...models.LeadStatus) {
	t.Helper()
	for _, st := range path {
		_, err := f.leads.UpdateStatus(f.ctx, id, StatusChangeRequest{Status: string(st)})
		require.NoError(t, err, "transition to %s", st)
	}
}

func (f *fixture) readyToConvert(t *testing.T, company, email string) *models.Lead {
	t.Helper()
	lead := f.createLead(t, company, email)
	f.moveTo(t, lead.ID, models.LeadStatusContacted, models.LeadStatusProposalSent)
	return lead
}

func (f *fixture) accountCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.store.Accounts().List(f.ctx, models.AccountFilter{})
	require.NoError(t, err)
	return total
}

func asXErr(t *testing.T, err error, kind xerrors.Kind) *xerrors.Error {
	t.Helper()
	var xe *xerrors.Error
	require.ErrorAs(t, err, &xe)
	require.Equal(t, kind, xe.Kind, "message: %s", xe.Message)
	return xe
}

func TestLeadService_Create(t *testing.T) {
	f := newFixture(t)

	lead := f.createLead(t, " Acme ", "jane@acme.io")
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Acme", lead.CompanyName)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.False(t, lead.CreatedAt.IsZero())

	err := f.leads.Create(f.ctx, &models.Lead{CompanyName: "Other", ContactName: "J", Email: "JANE@acme.io"})
	xe := asXErr(t, err, xerrors.KindConflict)
	assert.Equal(t, lead.ID, xe.Details["lead_id"])

	err = f.leads.Create(f.ctx, &models.Lead{CompanyName: "X", ContactName: "Y"})
	asXErr(t, err, xerrors.KindBadRequest)

	err = f.leads.Create(f.ctx, &models.Lead{CompanyName: "X", ContactName: "Y", Email: "x@y.io", Status: models.LeadStatusNegotiation})
	asXErr(t, err, xerrors.KindBadRequest)

	ghost := uuid.NewString()
	err = f.leads.Create(f.ctx, &models.Lead{CompanyName: "X", ContactName: "Y", Email: "x@y.io", AssignedUserID: &ghost})
	asXErr(t, err, xerrors.KindInvalidUser)
}

func TestLeadService_UpdateStatus_Valid(t *testing.T) {
	f := newFixture(t)
	lead := f.createLead(t, "Acme", "jane@acme.io")
	notes := "intro call booked"
	actor := uuid.NewString()

	res, err := f.leads.UpdateStatus(f.ctx, lead.ID, StatusChangeRequest{Status: "Qualified", Notes: &notes, UpdatedBy: &actor})
	require.NoError(t, err)
	assert.Equal(t, lead.ID, res.ID)
	assert.Equal(t, models.LeadStatusNew, res.PreviousStatus)
	assert.Equal(t, models.LeadStatusQualified, res.NewStatus)
	assert.False(t, res.UpdatedAt.IsZero())

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusQualified, stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, notes, *stored.Notes)
	assert.Nil(t, stored.ConvertedAt)

	history, err := f.leads.History(f.ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusChangeTransition, history[0].Reason)
	assert.Equal(t, models.LeadStatusNew, history[0].PreviousStatus)
	assert.Equal(t, models.LeadStatusQualified, history[0].NewStatus)
	require.NotNil(t, history[0].ChangedBy)
	assert.Equal(t, actor, *history[0].ChangedBy)
}

func TestLeadService_UpdateStatus_StampsConvertedAt(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")

	f.moveTo(t, lead.ID, models.LeadStatusConverted)

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, stored.Status)
	assert.NotNil(t, stored.ConvertedAt)
}

func TestLeadService_UpdateStatus_FromTerminalIsRejected(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")
	f.moveTo(t, lead.ID, models.LeadStatusConverted)
	before := len(f.store.History())

	for _, requested := range models.LeadStatuses {
		_, err := f.leads.UpdateStatus(f.ctx, lead.ID, StatusChangeRequest{Status: string(requested)})
		xe := asXErr(t, err, xerrors.KindInvalidTransition)
		assert.Equal(t, models.LeadStatusConverted, xe.Details["current_status"])
		assert.Equal(t, requested, xe.Details["requested_status"])
		assert.Equal(t, []models.LeadStatus{}, xe.Details["allowed_statuses"])
	}

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, stored.Status)
	assert.Len(t, f.store.History(), before)
}

func TestLeadService_UpdateStatus_InvalidInput(t *testing.T) {
	f := newFixture(t)
	lead := f.createLead(t, "Acme", "jane@acme.io")

	_, err := f.leads.UpdateStatus(f.ctx, lead.ID, StatusChangeRequest{})
	asXErr(t, err, xerrors.KindBadRequest)

	_, err = f.leads.UpdateStatus(f.ctx, lead.ID, StatusChangeRequest{Status: "Won"})
	asXErr(t, err, xerrors.KindBadRequest)

	_, err = f.leads.UpdateStatus(f.ctx, uuid.NewString(), StatusChangeRequest{Status: "Qualified"})
	asXErr(t, err, xerrors.KindNotFound)

	_, err = f.leads.UpdateStatus(f.ctx, "not-a-uuid", StatusChangeRequest{Status: "Qualified"})
	asXErr(t, err, xerrors.KindNotFound)

	_, err = f.leads.UpdateStatus(f.ctx, lead.ID, StatusChangeRequest{Status: "Negotiation"})
	xe := asXErr(t, err, xerrors.KindInvalidTransition)
	assert.Contains(t, xe.Message, "Qualified, Contacted, Unqualified")
}

func TestLeadService_ConvertToAccount(t *testing.T) {
	f := newFixture(t)
	lead := f.createLead(t, "Acme", "jane@acme.io")
	phone := "+1 555 0100"
	_, err := f.leads.Update(f.ctx, lead.ID, LeadUpdate{Phone: &phone})
	require.NoError(t, err)
	f.moveTo(t, lead.ID, models.LeadStatusContacted, models.LeadStatusProposalSent)

	res, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, lead.ID, res.Lead.ID)
	assert.Equal(t, models.LeadStatusProposalSent, res.Lead.PreviousStatus)
	assert.Equal(t, models.LeadStatusConvertedToAccount, res.Lead.NewStatus)
	assert.Equal(t, "Acme", res.Account.Name)
	assert.Equal(t, models.AccountTypeClient, res.Account.Type)
	assert.Equal(t, models.AccountStatusActive, res.Account.Status)
	require.NotNil(t, res.Account.ContactEmail)
	assert.Equal(t, "jane@acme.io", *res.Account.ContactEmail)
	require.NotNil(t, res.Account.ContactPhone)
	assert.Equal(t, phone, *res.Account.ContactPhone)

	account, err := f.accounts.Get(f.ctx, res.Account.ID)
	require.NoError(t, err)
	require.NotNil(t, account.ConvertedFromLeadID)
	assert.Equal(t, lead.ID, *account.ConvertedFromLeadID)
	require.NotNil(t, account.Description)
	assert.Contains(t, *account.Description, lead.ID)

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConvertedToAccount, stored.Status)
	assert.NotNil(t, stored.ConvertedAt)

	history, err := f.leads.History(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusChangeConversion, history[0].Reason)
}

func TestLeadService_ConvertToAccount_Ineligible(t *testing.T) {
	f := newFixture(t)

	lost := f.readyToConvert(t, "Lost Co", "lost@co.io")
	f.moveTo(t, lost.ID, models.LeadStatusLost)
	_, err := f.leads.ConvertToAccount(f.ctx, lost.ID, nil, "")
	xe := asXErr(t, err, xerrors.KindNotConvertible)
	assert.Equal(t, models.LeadStatusLost, xe.Details["current_status"])

	fresh := f.createLead(t, "Fresh", "fresh@co.io")
	_, err = f.leads.ConvertToAccount(f.ctx, fresh.ID, nil, "")
	asXErr(t, err, xerrors.KindNotConvertible)

	_, err = f.leads.ConvertToAccount(f.ctx, uuid.NewString(), nil, "")
	asXErr(t, err, xerrors.KindNotFound)

	assert.Zero(t, f.accountCount(t))
}

func TestLeadService_ConvertToAccount_Idempotent(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")

	first, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)

	_, err = f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	asXErr(t, err, xerrors.KindNotConvertible)
	assert.Equal(t, 1, f.accountCount(t))

	_, err = f.accounts.ReverseConversion(f.ctx, first.Account.ID, "")
	require.NoError(t, err)
	f.moveTo(t, lead.ID, models.LeadStatusContacted, models.LeadStatusProposalSent)

	second, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Equal(t, models.AccountStatusActive, second.Account.Status)
	assert.Equal(t, 1, f.accountCount(t))
}

func TestLeadService_ConvertToAccount_KeepsPopulatedContactFields(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")

	first, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)
	ownerEmail := "owner@acme.io"
	_, err = f.accounts.Update(f.ctx, first.Account.ID, AccountUpdate{ContactEmail: &ownerEmail})
	require.NoError(t, err)
	_, err = f.accounts.ReverseConversion(f.ctx, first.Account.ID, "")
	require.NoError(t, err)

	phone := "+1 555 0199"
	_, err = f.leads.Update(f.ctx, lead.ID, LeadUpdate{Phone: &phone})
	require.NoError(t, err)
	f.moveTo(t, lead.ID, models.LeadStatusContacted, models.LeadStatusProposalSent)

	second, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)
	require.NotNil(t, second.Account.ContactEmail)
	assert.Equal(t, ownerEmail, *second.Account.ContactEmail)
	require.NotNil(t, second.Account.ContactPhone)
	assert.Equal(t, phone, *second.Account.ContactPhone)
}

func TestLeadService_ConvertToAccount_NameTaken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.accounts.Create(f.ctx, &models.Account{Name: "ACME"}))
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")

	_, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	asXErr(t, err, xerrors.KindConflict)

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusProposalSent, stored.Status)
}

func TestLeadService_ConvertToAccount_RollsBackOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")
	f.store.FailOn["leads.UpdateStatus"] = errors.New("connection reset")

	_, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	asXErr(t, err, xerrors.KindInternal)

	delete(f.store.FailOn, "leads.UpdateStatus")
	assert.Zero(t, f.accountCount(t))
	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusProposalSent, stored.Status)
}

func TestLeadService_BulkAssign(t *testing.T) {
	f := newFixture(t)
	userA := f.seedUser("alice")
	userB := f.seedUser("bob")

	var ids []string
	for i, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		lead := &models.Lead{CompanyName: "Co", ContactName: "C", Email: email}
		if i < 2 {
			lead.AssignedUserID = &userA.ID
		}
		require.NoError(t, f.leads.Create(f.ctx, lead))
		ids = append(ids, lead.ID)
	}

	res, err := f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: ids, AssignedUserID: userB.ID})
	require.NoError(t, err)
	assert.Len(t, res.AssignedLeads, 3)
	assert.Equal(t, userB.ID, res.AssignedUser.ID)
	assert.Equal(t, 3, res.NotificationCount)
	f.notes.Wait()
	assert.Equal(t, 3, f.notifier.count())

	for _, id := range ids {
		lead, err := f.leads.Get(f.ctx, id)
		require.NoError(t, err)
		require.NotNil(t, lead.AssignedUserID)
		assert.Equal(t, userB.ID, *lead.AssignedUserID)
	}
	stored, err := f.store.Notifications().ListByUser(f.ctx, userB.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	again, err := f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: ids, AssignedUserID: userB.ID})
	require.NoError(t, err)
	assert.Len(t, again.AssignedLeads, 3)
	assert.Zero(t, again.NotificationCount)
	f.notes.Wait()
	assert.Equal(t, 3, f.notifier.count())
}

func TestLeadService_BulkAssign_Errors(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser("bob")
	lead := f.createLead(t, "Acme", "jane@acme.io")

	_, err := f.leads.BulkAssign(f.ctx, BulkAssignRequest{AssignedUserID: user.ID})
	asXErr(t, err, xerrors.KindBadRequest)

	_, err = f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: []string{"nope"}, AssignedUserID: user.ID})
	asXErr(t, err, xerrors.KindBadRequest)

	_, err = f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: []string{lead.ID}, AssignedUserID: uuid.NewString()})
	asXErr(t, err, xerrors.KindInvalidUser)

	missing := uuid.NewString()
	_, err = f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: []string{lead.ID, missing}, AssignedUserID: user.ID})
	xe := asXErr(t, err, xerrors.KindNotFound)
	assert.Equal(t, []string{missing}, xe.Details["missing_ids"])

	stored, err := f.leads.Get(f.ctx, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedUserID)
	f.notes.Wait()
	assert.Zero(t, f.notifier.count())
}

func TestLeadService_BulkAssign_DeliveryFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	user := f.seedUser("bob")
	lead := f.createLead(t, "Acme", "jane@acme.io")

	res, err := f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: []string{lead.ID}, AssignedUserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NotificationCount)
	f.notes.Wait()
	assert.Equal(t, 1, f.notifier.count())
}

func TestLeadService_BulkAssign_DoesNotWaitForDelivery(t *testing.T) {
	f := newFixture(t)
	f.notifier.block = make(chan struct{})
	user := f.seedUser("bob")
	lead := f.createLead(t, "Acme", "jane@acme.io")

	done := make(chan *BulkAssignResult, 1)
	go func() {
		res, err := f.leads.BulkAssign(f.ctx, BulkAssignRequest{LeadIDs: []string{lead.ID}, AssignedUserID: user.ID})
		assert.NoError(t, err)
		done <- res
	}()

	select {
	case res := <-done:
		require.NotNil(t, res)
		assert.Equal(t, 1, res.NotificationCount)
	case <-time.After(2 * time.Second):
		t.Fatal("bulk assign blocked on notification delivery")
	}
	assert.Zero(t, f.notifier.count())

	close(f.notifier.block)
	f.notes.Wait()
	assert.Equal(t, 1, f.notifier.count())
}

func TestLeadService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	lead := f.createLead(t, "Acme", "jane@acme.io")
	f.createLead(t, "Globex", "hank@globex.io")

	country := "Kenya"
	updated, err := f.leads.Update(f.ctx, lead.ID, LeadUpdate{Country: &country})
	require.NoError(t, err)
	require.NotNil(t, updated.Country)
	assert.Equal(t, "Kenya", *updated.Country)
	assert.Equal(t, models.LeadStatusNew, updated.Status)

	taken := "hank@globex.io"
	_, err = f.leads.Update(f.ctx, lead.ID, LeadUpdate{Email: &taken})
	asXErr(t, err, xerrors.KindConflict)

	blank := " "
	_, err = f.leads.Update(f.ctx, lead.ID, LeadUpdate{CompanyName: &blank})
	asXErr(t, err, xerrors.KindBadRequest)
}

func TestLeadService_Delete(t *testing.T) {
	f := newFixture(t)
	lead := f.readyToConvert(t, "Acme", "jane@acme.io")
	res, err := f.leads.ConvertToAccount(f.ctx, lead.ID, nil, "")
	require.NoError(t, err)

	require.NoError(t, f.leads.Delete(f.ctx, lead.ID))

	_, err = f.leads.Get(f.ctx, lead.ID)
	asXErr(t, err, xerrors.KindNotFound)
	account, err := f.accounts.Get(f.ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Nil(t, account.ConvertedFromLeadID)

	err = f.leads.Delete(f.ctx, lead.ID)
	asXErr(t, err, xerrors.KindNotFound)
}

func TestLeadService_List(t *testing.T) {
	f := newFixture(t)
	f.createLead(t, "Acme", "jane@acme.io")
	f.createLead(t, "Globex", "hank@globex.io")
	qualified := f.createLead(t, "Initech", "bill@initech.io")
	f.moveTo(t, qualified.ID, models.LeadStatusQualified)

	page, err := f.leads.List(f.ctx, models.LeadFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.Size)

	page, err = f.leads.List(f.ctx, models.LeadFilter{Status: models.LeadStatusQualified}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, qualified.ID, page.Items[0].ID)

	page, err = f.leads.List(f.ctx, models.LeadFilter{Query: "GLOB"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = f.leads.List(f.ctx, models.LeadFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Total)

	page, err = f.leads.List(f.ctx, models.LeadFilter{}, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.Size)
}
