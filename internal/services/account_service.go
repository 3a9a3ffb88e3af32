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

type AccountService struct {
	store  repositories.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewAccountService(store repositories.Store, logger *zap.Logger) *AccountService {
	return &AccountService{store: store, logger: logger, now: utcNow}
}

type AccountUpdate struct {
	Name         *string               `json:"name,omitempty"`
	Type         *models.AccountType   `json:"type,omitempty"`
	Status       *models.AccountStatus `json:"status,omitempty"`
	Description  *string               `json:"description,omitempty"`
	ContactName  *string               `json:"contact_name,omitempty"`
	ContactEmail *string               `json:"contact_email,omitempty"`
	ContactPhone *string               `json:"contact_phone,omitempty"`
	Industry     *string               `json:"industry,omitempty"`
}

type ReversalResult struct {
	AccountID     string               `json:"account_id"`
	AccountStatus models.AccountStatus `json:"account_status"`
	LeadID        string               `json:"lead_id"`
	LeadStatus    models.LeadStatus    `json:"lead_status"`
}

func validAccountType(t models.AccountType) bool {
	return t == models.AccountTypeClient || t == models.AccountTypeChannelPartner
}

func validAccountStatus(s models.AccountStatus) bool {
	return s == models.AccountStatusActive || s == models.AccountStatusInactive
}

// Create stores a manually entered account. Only conversion links an account
// to a lead.
func (s *AccountService) Create(ctx context.Context, a *models.Account) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return xerrors.BadRequest("name is required")
	}
	if a.Type == "" {
		a.Type = models.AccountTypeClient
	}
	if !validAccountType(a.Type) {
		return xerrors.BadRequest("unknown account type").With("type", a.Type)
	}
	if a.Status == "" {
		a.Status = models.AccountStatusActive
	}
	if !validAccountStatus(a.Status) {
		return xerrors.BadRequest("unknown account status").With("status", a.Status)
	}
	a.Description = trimmed(a.Description)
	a.ContactName = trimmed(a.ContactName)
	a.ContactEmail = trimmed(a.ContactEmail)
	a.ContactPhone = trimmed(a.ContactPhone)
	a.Industry = trimmed(a.Industry)
	a.ConvertedFromLeadID = nil

	if err := s.checkNameFree(ctx, s.store, a.Name, ""); err != nil {
		return err
	}

	now := s.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := s.store.Accounts().Create(ctx, a); err != nil {
		return storeErr(err, "failed to create account")
	}
	return nil
}

func (s *AccountService) checkNameFree(ctx context.Context, store repositories.Store, name, exceptID string) error {
	existing, err := store.Accounts().GetByName(ctx, name)
	if err != nil {
		return storeErr(err, "failed to check account name")
	}
	if existing != nil && existing.ID != exceptID {
		return xerrors.Conflict("an account with this name already exists").
			With("name", name).
			With("account_id", existing.ID)
	}
	return nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	return getAccount(ctx, s.store, id)
}

func (s *AccountService) List(ctx context.Context, filter models.AccountFilter, page, size int) (*Page[*models.Account], error) {
	page, size, filter.Limit, filter.Offset = normalizePage(page, size)
	items, total, err := s.store.Accounts().List(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "failed to list accounts")
	}
	return &Page[*models.Account]{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *AccountService) Update(ctx context.Context, id string, upd AccountUpdate) (*models.Account, error) {
	a, err := getAccount(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if isBlank(upd.Name) {
			return nil, xerrors.BadRequest("name must not be empty")
		}
		a.Name = strings.TrimSpace(*upd.Name)
		if err := s.checkNameFree(ctx, s.store, a.Name, a.ID); err != nil {
			return nil, err
		}
	}
	if upd.Type != nil {
		if !validAccountType(*upd.Type) {
			return nil, xerrors.BadRequest("unknown account type").With("type", *upd.Type)
		}
		a.Type = *upd.Type
	}
	if upd.Status != nil {
		if !validAccountStatus(*upd.Status) {
			return nil, xerrors.BadRequest("unknown account status").With("status", *upd.Status)
		}
		a.Status = *upd.Status
	}
	if upd.Description != nil {
		a.Description = trimmed(upd.Description)
	}
	if upd.ContactName != nil {
		a.ContactName = trimmed(upd.ContactName)
	}
	if upd.ContactEmail != nil {
		a.ContactEmail = trimmed(upd.ContactEmail)
	}
	if upd.ContactPhone != nil {
		a.ContactPhone = trimmed(upd.ContactPhone)
	}
	if upd.Industry != nil {
		a.Industry = trimmed(upd.Industry)
	}

	a.UpdatedAt = s.now()
	if err := s.store.Accounts().Update(ctx, a); err != nil {
		return nil, storeErr(err, "failed to update account")
	}
	return a, nil
}

// Delete removes the account. When it came from a lead conversion, the lead
// is first reset to New through the override path.
func (s *AccountService) Delete(ctx context.Context, id, actorID string) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		a, err := getAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if a.ConvertedFromLeadID != nil {
			lead, err := tx.Leads().GetByID(ctx, *a.ConvertedFromLeadID)
			if err != nil {
				return err
			}
			if lead != nil {
				note := fmt.Sprintf("account %s deleted", a.ID)
				if err := applyStatusOverride(ctx, tx, lead, models.LeadStatusNew, trimmed(&actorID), note, s.now()); err != nil {
					return err
				}
			}
		}
		return tx.Accounts().Delete(ctx, a.ID)
	})
	if err != nil {
		return storeErr(err, "failed to delete account")
	}
	return nil
}

// ReverseConversion deactivates an account created by conversion and resets
// the originating lead to New. The lead is never deleted.
func (s *AccountService) ReverseConversion(ctx context.Context, id, actorID string) (*ReversalResult, error) {
	var result *ReversalResult
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		a, err := getAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		if a.ConvertedFromLeadID == nil {
			return xerrors.New(xerrors.KindNotReversible, "account was not created from a lead conversion").
				With("account_id", a.ID)
		}
		leadID := *a.ConvertedFromLeadID
		lead, err := tx.Leads().GetByID(ctx, leadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return xerrors.NotFound("lead", leadID).With("account_id", a.ID)
		}

		now := s.now()
		a.Status = models.AccountStatusInactive
		a.UpdatedAt = now
		if err := tx.Accounts().Update(ctx, a); err != nil {
			return err
		}
		note := fmt.Sprintf("conversion into account %s reversed", a.ID)
		if err := applyStatusOverride(ctx, tx, lead, models.LeadStatusNew, trimmed(&actorID), note, now); err != nil {
			return err
		}

		result = &ReversalResult{
			AccountID:     a.ID,
			AccountStatus: a.Status,
			LeadID:        lead.ID,
			LeadStatus:    models.LeadStatusNew,
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "failed to reverse conversion")
	}

	s.logger.Info("account conversion reversed",
		zap.String("account_id", result.AccountID),
		zap.String("lead_id", result.LeadID),
	)
	return result, nil
}

func getAccount(ctx context.Context, store repositories.Store, id string) (*models.Account, error) {
	if !validID(id) {
		return nil, xerrors.NotFound("account", id)
	}
	a, err := store.Accounts().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to load account")
	}
	if a == nil {
		return nil, xerrors.NotFound("account", id)
	}
	return a, nil
}
