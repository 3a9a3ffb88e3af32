package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"irisai/internal/models"
	"irisai/internal/repositories"
	"irisai/internal/xerrors"
)

type LeadService struct {
	store         repositories.Store
	notifications *NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

func NewLeadService(store repositories.Store, notifications *NotificationService, logger *zap.Logger) *LeadService {
	return &LeadService{store: store, notifications: notifications, logger: logger, now: utcNow}
}

// LeadUpdate carries profile changes. Nil fields are left as they are; an
// empty string clears an optional field. Status is not writable here.
type LeadUpdate struct {
	CompanyName    *string `json:"company_name,omitempty"`
	ContactName    *string `json:"contact_name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	LinkedInURL    *string `json:"linkedin_url,omitempty"`
	Country        *string `json:"country,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	AssignedUserID *string `json:"assigned_user_id,omitempty"`
}

type StatusChangeRequest struct {
	Status    string  `json:"status"`
	Notes     *string `json:"notes,omitempty"`
	UpdatedBy *string `json:"updated_by,omitempty"`
}

type StatusChangeResult struct {
	ID             string            `json:"id"`
	PreviousStatus models.LeadStatus `json:"previous_status"`
	NewStatus      models.LeadStatus `json:"new_status"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ConvertedLead struct {
	ID             string            `json:"id"`
	CompanyName    string            `json:"company_name"`
	ContactName    string            `json:"contact_name"`
	PreviousStatus models.LeadStatus `json:"previous_status"`
	NewStatus      models.LeadStatus `json:"new_status"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ConvertedAccount struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Type         models.AccountType   `json:"type"`
	Status       models.AccountStatus `json:"status"`
	ContactName  *string              `json:"contact_name,omitempty"`
	ContactEmail *string              `json:"contact_email,omitempty"`
	ContactPhone *string              `json:"contact_phone,omitempty"`
}

type ConversionResult struct {
	Lead    ConvertedLead    `json:"lead"`
	Account ConvertedAccount `json:"account"`
	// Created is false when an account from an earlier conversion was reused.
	Created bool `json:"created"`
}

type BulkAssignRequest struct {
	LeadIDs        []string `json:"leadIds"`
	AssignedUserID string   `json:"assignedUserId"`
}

type BulkAssignResult struct {
	AssignedLeads     []*models.Lead `json:"assignedLeads"`
	AssignedUser      *models.User   `json:"assignedUser"`
	NotificationCount int            `json:"notificationCount"`
}

func (s *LeadService) Create(ctx context.Context, lead *models.Lead) error {
	lead.CompanyName = strings.TrimSpace(lead.CompanyName)
	lead.ContactName = strings.TrimSpace(lead.ContactName)
	lead.Email = strings.TrimSpace(lead.Email)
	switch {
	case lead.CompanyName == "":
		return xerrors.BadRequest("company_name is required")
	case lead.ContactName == "":
		return xerrors.BadRequest("contact_name is required")
	case lead.Email == "":
		return xerrors.BadRequest("email is required")
	}

	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if st, ok := models.ParseLeadStatus(string(lead.Status)); !ok || st != models.LeadStatusNew {
		return xerrors.BadRequest("new leads start in status New").With("status", lead.Status)
	}
	lead.Status = models.LeadStatusNew
	lead.Phone = trimmed(lead.Phone)
	lead.LinkedInURL = trimmed(lead.LinkedInURL)
	lead.Country = trimmed(lead.Country)
	lead.Notes = trimmed(lead.Notes)
	lead.AssignedUserID = trimmed(lead.AssignedUserID)
	lead.ConvertedAt = nil

	if lead.AssignedUserID != nil {
		if _, err := resolveUser(ctx, s.store, *lead.AssignedUserID); err != nil {
			return err
		}
	}
	if err := s.checkEmailFree(ctx, lead.Email, ""); err != nil {
		return err
	}

	now := s.now()
	lead.ID = uuid.NewString()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if err := s.store.Leads().Create(ctx, lead); err != nil {
		return storeErr(err, "failed to create lead")
	}
	return nil
}

func (s *LeadService) checkEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.store.Leads().GetByEmail(ctx, email)
	if err != nil {
		return storeErr(err, "failed to check lead email")
	}
	if existing != nil && existing.ID != exceptID {
		return xerrors.Conflict("a lead with this email already exists").
			With("email", email).
			With("lead_id", existing.ID)
	}
	return nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	return getLead(ctx, s.store, id)
}

func (s *LeadService) List(ctx context.Context, filter models.LeadFilter, page, size int) (*Page[*models.Lead], error) {
	page, size, filter.Limit, filter.Offset = normalizePage(page, size)
	if filter.AssignedUserID != "" && !validID(filter.AssignedUserID) {
		return &Page[*models.Lead]{Items: []*models.Lead{}, Page: page, Size: size}, nil
	}
	items, total, err := s.store.Leads().List(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "failed to list leads")
	}
	return &Page[*models.Lead]{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *LeadService) Update(ctx context.Context, id string, upd LeadUpdate) (*models.Lead, error) {
	lead, err := getLead(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	required := []struct {
		field string
		src   *string
		dst   *string
	}{
		{"company_name", upd.CompanyName, &lead.CompanyName},
		{"contact_name", upd.ContactName, &lead.ContactName},
		{"email", upd.Email, &lead.Email},
	}
	for _, r := range required {
		if r.src == nil {
			continue
		}
		if isBlank(r.src) {
			return nil, xerrors.BadRequest(r.field + " must not be empty")
		}
		*r.dst = strings.TrimSpace(*r.src)
	}
	if upd.Phone != nil {
		lead.Phone = trimmed(upd.Phone)
	}
	if upd.LinkedInURL != nil {
		lead.LinkedInURL = trimmed(upd.LinkedInURL)
	}
	if upd.Country != nil {
		lead.Country = trimmed(upd.Country)
	}
	if upd.Notes != nil {
		lead.Notes = trimmed(upd.Notes)
	}
	if upd.AssignedUserID != nil {
		lead.AssignedUserID = trimmed(upd.AssignedUserID)
		if lead.AssignedUserID != nil {
			if _, err := resolveUser(ctx, s.store, *lead.AssignedUserID); err != nil {
				return nil, err
			}
		}
	}
	if upd.Email != nil {
		if err := s.checkEmailFree(ctx, lead.Email, lead.ID); err != nil {
			return nil, err
		}
	}

	lead.UpdatedAt = s.now()
	if err := s.store.Leads().Update(ctx, lead); err != nil {
		return nil, storeErr(err, "failed to update lead")
	}
	return lead, nil
}

// Delete removes the lead row. An account converted from it keeps its data
// but loses the back-reference.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		lead, err := getLead(ctx, tx, id)
		if err != nil {
			return err
		}
		account, err := tx.Accounts().GetByConvertedLeadID(ctx, lead.ID)
		if err != nil {
			return err
		}
		if account != nil {
			account.ConvertedFromLeadID = nil
			account.UpdatedAt = s.now()
			if err := tx.Accounts().Update(ctx, account); err != nil {
				return err
			}
		}
		return tx.Leads().Delete(ctx, lead.ID)
	})
	if err != nil {
		return storeErr(err, "failed to delete lead")
	}
	return nil
}

// UpdateStatus applies a validated transition and records it in the lead's
// history. Rejected transitions leave the lead untouched.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, req StatusChangeRequest) (*StatusChangeResult, error) {
	if strings.TrimSpace(req.Status) == "" {
		return nil, xerrors.BadRequest("status is required")
	}
	requested, ok := models.ParseLeadStatus(req.Status)
	if !ok {
		return nil, xerrors.BadRequest("unknown lead status").
			With("status", req.Status).
			With("allowed_values", models.LeadStatuses)
	}

	var result *StatusChangeResult
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		lead, err := getLead(ctx, tx, id)
		if err != nil {
			return err
		}
		check := ValidateLeadTransition(lead.Status, requested)
		if !check.Valid {
			return xerrors.New(xerrors.KindInvalidTransition, check.Reason).
				With("lead_id", lead.ID).
				With("current_status", check.Current).
				With("requested_status", check.Requested).
				With("allowed_statuses", check.Allowed)
		}

		now := s.now()
		upd := repositories.LeadStatusUpdate{
			ID:        lead.ID,
			Status:    requested,
			Notes:     trimmed(req.Notes),
			UpdatedAt: now,
		}
		if IsConvertedLeadStatus(requested) {
			upd.ConvertedAt = &now
		}
		if err := tx.Leads().UpdateStatus(ctx, upd); err != nil {
			return err
		}
		if err := recordStatusChange(ctx, tx, lead.ID, lead.Status, requested, upd.Notes, trimmed(req.UpdatedBy),
			models.StatusChangeTransition, now); err != nil {
			return err
		}

		result = &StatusChangeResult{
			ID:             lead.ID,
			PreviousStatus: lead.Status,
			NewStatus:      requested,
			UpdatedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to update lead status")
	}

	s.logger.Info("lead status changed",
		zap.String("lead_id", result.ID),
		zap.String("from", string(result.PreviousStatus)),
		zap.String("to", string(result.NewStatus)),
	)
	return result, nil
}

// ConvertToAccount creates the account for an eligible lead, or reactivates the
// one left by an earlier conversion, and marks the lead converted. Both
// writes share one transaction.
func (s *LeadService) ConvertToAccount(ctx context.Context, id string, notes *string, actorID string) (*ConversionResult, error) {
	var result *ConversionResult
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		lead, err := getLead(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanConvertLead(lead.Status) {
			return xerrors.New(xerrors.KindNotConvertible,
				fmt.Sprintf("lead in status %q cannot be converted to an account", lead.Status)).
				With("lead_id", lead.ID).
				With("current_status", lead.Status)
		}

		now := s.now()
		account, created, err := s.resolveConvertedAccount(ctx, tx, lead, now)
		if err != nil {
			return err
		}

		upd := repositories.LeadStatusUpdate{
			ID:          lead.ID,
			Status:      models.LeadStatusConvertedToAccount,
			Notes:       trimmed(notes),
			UpdatedAt:   now,
			ConvertedAt: &now,
		}
		if err := tx.Leads().UpdateStatus(ctx, upd); err != nil {
			return err
		}
		if err := recordStatusChange(ctx, tx, lead.ID, lead.Status, upd.Status, upd.Notes, trimmed(&actorID),
			models.StatusChangeConversion, now); err != nil {
			return err
		}

		result = &ConversionResult{
			Lead: ConvertedLead{
				ID:             lead.ID,
				CompanyName:    lead.CompanyName,
				ContactName:    lead.ContactName,
				PreviousStatus: lead.Status,
				NewStatus:      upd.Status,
				UpdatedAt:      now,
			},
			Account: ConvertedAccount{
				ID:           account.ID,
				Name:         account.Name,
				Type:         account.Type,
				Status:       account.Status,
				ContactName:  account.ContactName,
				ContactEmail: account.ContactEmail,
				ContactPhone: account.ContactPhone,
			},
			Created: created,
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to convert lead")
	}

	s.logger.Info("lead converted to account",
		zap.String("lead_id", result.Lead.ID),
		zap.String("account_id", result.Account.ID),
		zap.Bool("account_created", result.Created),
	)
	return result, nil
}

// resolveConvertedAccount returns the account linked to lead, creating it when
// none exists. A reused account is reactivated and only its empty contact
// fields are filled from the lead.
func (s *LeadService) resolveConvertedAccount(ctx context.Context, tx repositories.Store, lead *models.Lead, now time.Time) (*models.Account, bool, error) {
	existing, err := tx.Accounts().GetByConvertedLeadID(ctx, lead.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		existing.Status = models.AccountStatusActive
		if isBlank(existing.ContactName) {
			existing.ContactName = strPtr(lead.ContactName)
		}
		if isBlank(existing.ContactEmail) {
			existing.ContactEmail = strPtr(lead.Email)
		}
		if isBlank(existing.ContactPhone) && !isBlank(lead.Phone) {
			existing.ContactPhone = strPtr(*lead.Phone)
		}
		existing.UpdatedAt = now
		if err := tx.Accounts().Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	taken, err := tx.Accounts().GetByName(ctx, lead.CompanyName)
	if err != nil {
		return nil, false, err
	}
	if taken != nil {
		return nil, false, xerrors.Conflict("an account with this name already exists").
			With("name", lead.CompanyName).
			With("account_id", taken.ID)
	}

	account := &models.Account{
		ID:                  uuid.NewString(),
		Name:                lead.CompanyName,
		Type:                models.AccountTypeClient,
		Status:              models.AccountStatusActive,
		Description:         strPtr(fmt.Sprintf("Converted from lead %s (%s)", lead.CompanyName, lead.ID)),
		ContactName:         strPtr(lead.ContactName),
		ContactEmail:        strPtr(lead.Email),
		ConvertedFromLeadID: strPtr(lead.ID),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if !isBlank(lead.Phone) {
		account.ContactPhone = strPtr(*lead.Phone)
	}
	if err := tx.Accounts().Create(ctx, account); err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// BulkAssign moves every named lead to one user and notifies that user about
// each lead whose assignee changed. The batch is all-or-nothing.
func (s *LeadService) BulkAssign(ctx context.Context, req BulkAssignRequest) (*BulkAssignResult, error) {
	if len(req.LeadIDs) == 0 {
		return nil, xerrors.BadRequest("leadIds must not be empty")
	}
	ids := make([]string, 0, len(req.LeadIDs))
	seen := make(map[string]bool, len(req.LeadIDs))
	for _, id := range req.LeadIDs {
		id = strings.TrimSpace(id)
		if !validID(id) {
			return nil, xerrors.BadRequest("invalid lead id").With("lead_id", id)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if strings.TrimSpace(req.AssignedUserID) == "" {
		return nil, xerrors.BadRequest("assignedUserId is required")
	}
	user, err := resolveUser(ctx, s.store, strings.TrimSpace(req.AssignedUserID))
	if err != nil {
		return nil, err
	}

	var (
		assigned []*models.Lead
		created  []*models.Notification
	)
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		leads, err := tx.Leads().GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if missing := missingLeadIDs(ids, leads); len(missing) > 0 {
			return xerrors.New(xerrors.KindNotFound, "one or more leads not found").With("missing_ids", missing)
		}

		now := s.now()
		if _, err := tx.Leads().AssignMany(ctx, ids, user.ID, now); err != nil {
			return err
		}
		for _, lead := range leads {
			changed := lead.AssignedUserID == nil || *lead.AssignedUserID != user.ID
			lead.AssignedUserID = strPtr(user.ID)
			lead.UpdatedAt = now
			if !changed {
				continue
			}
			n := &models.Notification{
				ID:        uuid.NewString(),
				UserID:    user.ID,
				LeadID:    strPtr(lead.ID),
				Type:      models.NotificationLeadAssigned,
				Title:     "New lead assigned",
				Message:   fmt.Sprintf("Lead %s (%s) has been assigned to you.", lead.CompanyName, lead.ContactName),
				CreatedAt: now,
			}
			if err := tx.Notifications().Create(ctx, n); err != nil {
				return err
			}
			created = append(created, n)
		}
		assigned = leads
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to assign leads")
	}

	s.logger.Info("leads assigned",
		zap.String("user_id", user.ID),
		zap.Int("leads", len(assigned)),
		zap.Int("notifications", len(created)),
	)
	if s.notifications != nil {
		s.notifications.Dispatch(ctx, *user, created)
	}
	return &BulkAssignResult{AssignedLeads: assigned, AssignedUser: user, NotificationCount: len(created)}, nil
}

func missingLeadIDs(ids []string, found []*models.Lead) []string {
	have := make(map[string]bool, len(found))
	for _, l := range found {
		have[l.ID] = true
	}
	missing := []string{}
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func (s *LeadService) History(ctx context.Context, id string) ([]*models.LeadStatusChange, error) {
	if _, err := getLead(ctx, s.store, id); err != nil {
		return nil, err
	}
	rows, err := s.store.LeadHistory().ListByLead(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to load lead history")
	}
	return rows, nil
}

func getLead(ctx context.Context, store repositories.Store, id string) (*models.Lead, error) {
	if !validID(id) {
		return nil, xerrors.NotFound("lead", id)
	}
	lead, err := store.Leads().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to load lead")
	}
	if lead == nil {
		return nil, xerrors.NotFound("lead", id)
	}
	return lead, nil
}

func resolveUser(ctx context.Context, store repositories.Store, id string) (*models.User, error) {
	invalid := xerrors.New(xerrors.KindInvalidUser, "assigned user does not exist").With("user_id", id)
	if !validID(id) {
		return nil, invalid
	}
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to load user")
	}
	if user == nil {
		return nil, invalid
	}
	return user, nil
}

func recordStatusChange(ctx context.Context, tx repositories.Store, leadID string, from, to models.LeadStatus,
	notes, actor *string, reason models.StatusChangeReason, at time.Time) error {
	return tx.LeadHistory().Create(ctx, &models.LeadStatusChange{
		ID:             uuid.NewString(),
		LeadID:         leadID,
		PreviousStatus: from,
		NewStatus:      to,
		Notes:          notes,
		ChangedBy:      actor,
		Reason:         reason,
		CreatedAt:      at,
	})
}

// applyStatusOverride writes a lead status without consulting the transition
// table. Every use leaves an override row in the lead's history.
func applyStatusOverride(ctx context.Context, tx repositories.Store, lead *models.Lead, to models.LeadStatus,
	actor *string, note string, at time.Time) error {
	upd := repositories.LeadStatusUpdate{ID: lead.ID, Status: to, UpdatedAt: at}
	if err := tx.Leads().UpdateStatus(ctx, upd); err != nil {
		return err
	}
	return recordStatusChange(ctx, tx, lead.ID, lead.Status, to, &note, actor, models.StatusChangeOverride, at)
}

func strPtr(s string) *string { return &s }
