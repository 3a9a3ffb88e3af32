package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"irisai/internal/models"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	GetByEmail(ctx context.Context, email string) (*models.Lead, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Lead, error)
	Update(ctx context.Context, lead *models.Lead) error
	UpdateStatus(ctx context.Context, upd LeadStatusUpdate) error
	AssignMany(ctx context.Context, ids []string, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.LeadFilter) ([]*models.Lead, int, error)
	CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error)
}

// LeadStatusUpdate is the write performed by status application, conversion
// and override. Nil Notes/ConvertedAt leave the stored values untouched.
type LeadStatusUpdate struct {
	ID          string
	Status      models.LeadStatus
	Notes       *string
	UpdatedAt   time.Time
	ConvertedAt *time.Time
}

type leadRepository struct {
	db DBTX
}

func NewLeadRepository(db DBTX) LeadRepository {
	return &leadRepository{db: db}
}

const leadColumns = "id, company_name, contact_name, email, phone, linkedin_url, country, status, notes, " +
	"assigned_user_id, created_by, converted_at, created_at, updated_at"

func scanLead(row rowScanner) (*models.Lead, error) {
	l := &models.Lead{}
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.ContactName, &l.Email, &l.Phone, &l.LinkedInURL, &l.Country, &l.Status, &l.Notes,
		&l.AssignedUserID, &l.CreatedBy, &l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	const q = `
		INSERT INTO leads (id, company_name, contact_name, email, phone, linkedin_url, country, status, notes,
			assigned_user_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, q,
		lead.ID, lead.CompanyName, lead.ContactName, lead.Email, lead.Phone, lead.LinkedInURL, lead.Country,
		lead.Status, lead.Notes, lead.AssignedUserID, lead.CreatedBy, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(err, "create lead", "a lead with this email already exists")
	}
	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *leadRepository) GetByEmail(ctx context.Context, email string) (*models.Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE LOWER(email) = LOWER($1) LIMIT 1`
	lead, err := scanLead(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead by email: %w", err)
	}
	return lead, nil
}

func (r *leadRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE id = ANY($1::uuid[]) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get leads by ids: %w", err)
	}
	defer rows.Close()

	var out []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *leadRepository) Update(ctx context.Context, lead *models.Lead) error {
	const q = `
		UPDATE leads
		SET company_name=$1, contact_name=$2, email=$3, phone=$4, linkedin_url=$5, country=$6, notes=$7,
			assigned_user_id=$8, updated_at=$9
		WHERE id=$10
	`
	_, err := r.db.ExecContext(ctx, q,
		lead.CompanyName, lead.ContactName, lead.Email, lead.Phone, lead.LinkedInURL, lead.Country, lead.Notes,
		lead.AssignedUserID, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return wrapWriteErr(err, "update lead", "a lead with this email already exists")
	}
	return nil
}

func (r *leadRepository) UpdateStatus(ctx context.Context, upd LeadStatusUpdate) error {
	const q = `
		UPDATE leads
		SET status=$1, notes=COALESCE($2, notes), updated_at=$3, converted_at=COALESCE($4, converted_at)
		WHERE id=$5
	`
	if _, err := r.db.ExecContext(ctx, q, upd.Status, upd.Notes, upd.UpdatedAt, upd.ConvertedAt, upd.ID); err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	return nil
}

func (r *leadRepository) AssignMany(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	const q = `UPDATE leads SET assigned_user_id=$1, updated_at=$2 WHERE id = ANY($3::uuid[])`
	res, err := r.db.ExecContext(ctx, q, userID, at, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("assign leads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("assign leads: rows affected: %w", err)
	}
	return n, nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

func leadWhere(f models.LeadFilter) sq.And {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.AssignedUserID != "" {
		where = append(where, sq.Eq{"assigned_user_id": f.AssignedUserID})
	}
	if f.Country != "" {
		where = append(where, sq.ILike{"country": f.Country})
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		where = append(where, sq.Or{
			sq.ILike{"company_name": like},
			sq.ILike{"contact_name": like},
			sq.ILike{"email": like},
		})
	}
	return where
}

func (r *leadRepository) List(ctx context.Context, f models.LeadFilter) ([]*models.Lead, int, error) {
	where := leadWhere(f)

	countQ := psql.Select("COUNT(*)").From("leads")
	dataQ := psql.Select(leadColumns).From("leads").
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	if len(where) > 0 {
		countQ = countQ.Where(where)
		dataQ = dataQ.Where(where)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build lead count query: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	dataSQL, dataArgs, err := dataQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build lead list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	out := []*models.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}
	return out, total, nil
}

func (r *leadRepository) CountByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	out := map[models.LeadStatus]int{}
	for rows.Next() {
		var (
			status models.LeadStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
