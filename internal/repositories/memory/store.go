// Package memory is an in-process implementation of repositories.Store. It is
// used when no database URL is configured and by service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"irisai/internal/models"
	"irisai/internal/repositories"
	"irisai/internal/xerrors"
)

type data struct {
	leads         map[string]models.Lead
	accounts      map[string]models.Account
	users         map[string]models.User
	notifications map[string]models.Notification
	history       []models.LeadStatusChange
}

func (d *data) clone() *data {
	c := &data{
		leads:         make(map[string]models.Lead, len(d.leads)),
		accounts:      make(map[string]models.Account, len(d.accounts)),
		users:         make(map[string]models.User, len(d.users)),
		notifications: make(map[string]models.Notification, len(d.notifications)),
		history:       append([]models.LeadStatusChange(nil), d.history...),
	}
	for k, v := range d.leads {
		c.leads[k] = v
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	return c
}

type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	d    *data
	inTx bool

	// FailOn makes the named operation (e.g. "accounts.Create") return an
	// error. Tests use it to exercise rollback paths.
	FailOn map[string]error
}

func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		txMu: &sync.Mutex{},
		d: &data{
			leads:         map[string]models.Lead{},
			accounts:      map[string]models.Account{},
			users:         map[string]models.User{},
			notifications: map[string]models.Notification{},
		},
		FailOn: map[string]error{},
	}
}

// AddUser seeds a user; users are read-only through the repository API.
func (s *Store) AddUser(u models.User) {
	defer s.lockWrite()()
	s.d.users[u.ID] = u
}

// History returns every recorded status change in insertion order.
func (s *Store) History() []models.LeadStatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LeadStatusChange(nil), s.d.history...)
}

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		return err
	}
	return nil
}

func (s *Store) Leads() repositories.LeadRepository                 { return leadRepo{s} }
func (s *Store) Accounts() repositories.AccountRepository           { return accountRepo{s} }
func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }
func (s *Store) Notifications() repositories.NotificationRepository { return notificationRepo{s} }
func (s *Store) LeadHistory() repositories.LeadStatusHistoryRepository {
	return historyRepo{s}
}

func (s *Store) Ping(context.Context) error { return nil }

// WithTx serializes transactions and restores a snapshot when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	tx := *s
	tx.inTx = true
	if err := fn(&tx); err != nil {
		s.mu.Lock()
		*s.d = *snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite serializes a write against open transactions so a rollback never
// discards a commit made outside the transaction. Writes issued through the
// transaction's own store already hold txMu.
func (s *Store) lockWrite() (unlock func()) {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

func copyLead(l models.Lead) *models.Lead { return &l }

func copyAccount(a models.Account) *models.Account { return &a }

type leadRepo struct{ s *Store }

func (r leadRepo) Create(_ context.Context, lead *models.Lead) error {
	if err := r.s.fail("leads.Create"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	for _, l := range r.s.d.leads {
		if strings.EqualFold(l.Email, lead.Email) {
			return xerrors.Conflict("a lead with this email already exists")
		}
	}
	r.s.d.leads[lead.ID] = *lead
	return nil
}

func (r leadRepo) GetByID(_ context.Context, id string) (*models.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.d.leads[id]
	if !ok {
		return nil, nil
	}
	return copyLead(l), nil
}

func (r leadRepo) GetByEmail(_ context.Context, email string) (*models.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.d.leads {
		if strings.EqualFold(l.Email, email) {
			return copyLead(l), nil
		}
	}
	return nil, nil
}

func (r leadRepo) GetByIDs(_ context.Context, ids []string) ([]*models.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lead
	seen := map[string]bool{}
	for _, id := range ids {
		if l, ok := r.s.d.leads[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, copyLead(l))
		}
	}
	return out, nil
}

func (r leadRepo) Update(_ context.Context, lead *models.Lead) error {
	if err := r.s.fail("leads.Update"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	cur, ok := r.s.d.leads[lead.ID]
	if !ok {
		return nil
	}
	for id, l := range r.s.d.leads {
		if id != lead.ID && strings.EqualFold(l.Email, lead.Email) {
			return xerrors.Conflict("a lead with this email already exists")
		}
	}
	cur.CompanyName = lead.CompanyName
	cur.ContactName = lead.ContactName
	cur.Email = lead.Email
	cur.Phone = lead.Phone
	cur.LinkedInURL = lead.LinkedInURL
	cur.Country = lead.Country
	cur.Notes = lead.Notes
	cur.AssignedUserID = lead.AssignedUserID
	cur.UpdatedAt = lead.UpdatedAt
	r.s.d.leads[lead.ID] = cur
	return nil
}

func (r leadRepo) UpdateStatus(_ context.Context, upd repositories.LeadStatusUpdate) error {
	if err := r.s.fail("leads.UpdateStatus"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	cur, ok := r.s.d.leads[upd.ID]
	if !ok {
		return nil
	}
	cur.Status = upd.Status
	cur.UpdatedAt = upd.UpdatedAt
	if upd.Notes != nil {
		cur.Notes = upd.Notes
	}
	if upd.ConvertedAt != nil {
		cur.ConvertedAt = upd.ConvertedAt
	}
	r.s.d.leads[upd.ID] = cur
	return nil
}

func (r leadRepo) AssignMany(_ context.Context, ids []string, userID string, at time.Time) (int64, error) {
	if err := r.s.fail("leads.AssignMany"); err != nil {
		return 0, err
	}
	defer r.s.lockWrite()()
	var n int64
	seen := map[string]bool{}
	for _, id := range ids {
		cur, ok := r.s.d.leads[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		uid := userID
		cur.AssignedUserID = &uid
		cur.UpdatedAt = at
		r.s.d.leads[id] = cur
		n++
	}
	return n, nil
}

func (r leadRepo) Delete(_ context.Context, id string) error {
	if err := r.s.fail("leads.Delete"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	delete(r.s.d.leads, id)
	kept := r.s.d.history[:0]
	for _, h := range r.s.d.history {
		if h.LeadID != id {
			kept = append(kept, h)
		}
	}
	r.s.d.history = kept
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (r leadRepo) List(_ context.Context, f models.LeadFilter) ([]*models.Lead, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lead
	for _, l := range r.s.d.leads {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.AssignedUserID != "" && deref(l.AssignedUserID) != f.AssignedUserID {
			continue
		}
		if f.Country != "" && !strings.EqualFold(deref(l.Country), f.Country) {
			continue
		}
		if f.Query != "" && !containsFold(l.CompanyName, f.Query) && !containsFold(l.ContactName, f.Query) &&
			!containsFold(l.Email, f.Query) {
			continue
		}
		out = append(out, copyLead(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r leadRepo) CountByStatus(context.Context) (map[models.LeadStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[models.LeadStatus]int{}
	for _, l := range r.s.d.leads {
		out[l.Status]++
	}
	return out, nil
}

type accountRepo struct{ s *Store }

func (r accountRepo) nameTaken(name, exceptID string) bool {
	for id, a := range r.s.d.accounts {
		if id != exceptID && strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}

func (r accountRepo) Create(_ context.Context, a *models.Account) error {
	if err := r.s.fail("accounts.Create"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	if r.nameTaken(a.Name, "") {
		return xerrors.Conflict("an account with this name already exists")
	}
	r.s.d.accounts[a.ID] = *a
	return nil
}

func (r accountRepo) find(match func(models.Account) bool) *models.Account {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.d.accounts {
		if match(a) {
			return copyAccount(a)
		}
	}
	return nil
}

func (r accountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.ID == id }), nil
}

func (r accountRepo) GetByName(_ context.Context, name string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return strings.EqualFold(a.Name, name) }), nil
}

func (r accountRepo) GetByConvertedLeadID(_ context.Context, leadID string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return deref(a.ConvertedFromLeadID) == leadID }), nil
}

func (r accountRepo) Update(_ context.Context, a *models.Account) error {
	if err := r.s.fail("accounts.Update"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	cur, ok := r.s.d.accounts[a.ID]
	if !ok {
		return nil
	}
	if r.nameTaken(a.Name, a.ID) {
		return xerrors.Conflict("an account with this name already exists")
	}
	a.CreatedAt = cur.CreatedAt
	r.s.d.accounts[a.ID] = *a
	return nil
}

func (r accountRepo) Delete(_ context.Context, id string) error {
	if err := r.s.fail("accounts.Delete"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	delete(r.s.d.accounts, id)
	return nil
}

func (r accountRepo) List(_ context.Context, f models.AccountFilter) ([]*models.Account, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Account
	for _, a := range r.s.d.accounts {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Query != "" && !containsFold(a.Name, f.Query) && !containsFold(deref(a.ContactEmail), f.Query) {
			continue
		}
		out = append(out, copyAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r accountRepo) CountByStatus(context.Context) (map[models.AccountStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[models.AccountStatus]int{}
	for _, a := range r.s.d.accounts {
		out[a.Status]++
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	if err := r.s.fail("notifications.Create"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	r.s.d.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Notification{}
	for _, n := range r.s.d.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		n := n
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) (bool, error) {
	defer r.s.lockWrite()()
	n, ok := r.s.d.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	n.ReadAt = &at
	r.s.d.notifications[id] = n
	return true, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, c *models.LeadStatusChange) error {
	if err := r.s.fail("history.Create"); err != nil {
		return err
	}
	defer r.s.lockWrite()()
	r.s.d.history = append(r.s.d.history, *c)
	return nil
}

func (r historyRepo) ListByLead(_ context.Context, leadID string) ([]*models.LeadStatusChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.LeadStatusChange{}
	for i := len(r.s.d.history) - 1; i >= 0; i-- {
		if h := r.s.d.history[i]; h.LeadID == leadID {
			out = append(out, &h)
		}
	}
	return out, nil
}
