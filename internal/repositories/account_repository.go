package repositories

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"irisai/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByName(ctx context.Context, name string) (*models.Account, error)
	GetByConvertedLeadID(ctx context.Context, leadID string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.AccountFilter) ([]*models.Account, int, error)
	CountByStatus(ctx context.Context) (map[models.AccountStatus]int, error)
}

type accountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = "id, name, type, status, description, contact_name, contact_email, contact_phone, industry, " +
	"converted_from_lead_id, created_at, updated_at"

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID, &a.Name, &a.Type, &a.Status, &a.Description, &a.ContactName, &a.ContactEmail, &a.ContactPhone,
		&a.Industry, &a.ConvertedFromLeadID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *accountRepository) Create(ctx context.Context, a *models.Account) error {
	const q = `
		INSERT INTO accounts (id, name, type, status, description, contact_name, contact_email, contact_phone,
			industry, converted_from_lead_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.Name, a.Type, a.Status, a.Description, a.ContactName, a.ContactEmail, a.ContactPhone,
		a.Industry, a.ConvertedFromLeadID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(err, "create account", "an account with this name already exists")
	}
	return nil
}

func (r *accountRepository) getOne(ctx context.Context, op, where string, arg any) (*models.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + ` LIMIT 1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, q, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, "get account", "id = $1", id)
}

func (r *accountRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	return r.getOne(ctx, "get account by name", "LOWER(name) = LOWER($1)", name)
}

func (r *accountRepository) GetByConvertedLeadID(ctx context.Context, leadID string) (*models.Account, error) {
	return r.getOne(ctx, "get account by lead", "converted_from_lead_id = $1", leadID)
}

func (r *accountRepository) Update(ctx context.Context, a *models.Account) error {
	const q = `
		UPDATE accounts
		SET name=$1, type=$2, status=$3, description=$4, contact_name=$5, contact_email=$6, contact_phone=$7,
			industry=$8, converted_from_lead_id=$9, updated_at=$10
		WHERE id=$11
	`
	_, err := r.db.ExecContext(ctx, q,
		a.Name, a.Type, a.Status, a.Description, a.ContactName, a.ContactEmail, a.ContactPhone,
		a.Industry, a.ConvertedFromLeadID, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return wrapWriteErr(err, "update account", "an account with this name already exists")
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, f models.AccountFilter) ([]*models.Account, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": f.Status})
	}
	if f.Type != "" {
		where = append(where, sq.Eq{"type": f.Type})
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		where = append(where, sq.Or{sq.ILike{"name": like}, sq.ILike{"contact_email": like}})
	}

	countQ := psql.Select("COUNT(*)").From("accounts")
	dataQ := psql.Select(accountColumns).From("accounts").
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	if len(where) > 0 {
		countQ = countQ.Where(where)
		dataQ = dataQ.Where(where)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build account count query: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	dataSQL, dataArgs, err := dataQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build account list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := []*models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, total, nil
}

func (r *accountRepository) CountByStatus(ctx context.Context) (map[models.AccountStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM accounts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count accounts by status: %w", err)
	}
	defer rows.Close()

	out := map[models.AccountStatus]int{}
	for rows.Next() {
		var (
			status models.AccountStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
