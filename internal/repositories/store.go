package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"irisai/internal/xerrors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store groups the repositories backed by one database handle.
type Store interface {
	Leads() LeadRepository
	Accounts() AccountRepository
	Users() UserRepository
	Notifications() NotificationRepository
	LeadHistory() LeadStatusHistoryRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Nested calls reuse the outer transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

type SQLStore struct {
	db *sql.DB
	q  DBTX
}

func NewStore(db *sql.DB) *SQLStore {
	if db == nil {
		panic("repositories: received nil database connection")
	}
	return &SQLStore{db: db, q: db}
}

func (s *SQLStore) Leads() LeadRepository { return NewLeadRepository(s.q) }
func (s *SQLStore) Accounts() AccountRepository { return NewAccountRepository(s.q) }
func (s *SQLStore) Users() UserRepository { return NewUserRepository(s.q) }
func (s *SQLStore) Notifications() NotificationRepository { return NewNotificationRepository(s.q) }
func (s *SQLStore) LeadHistory() LeadStatusHistoryRepository { return NewLeadStatusHistoryRepository(s.q) }

func (s *SQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// no-op after a successful commit
	defer tx.Rollback()

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type rowScanner interface {
	Scan(dest ...any) error
}

const pqUniqueViolation = "23505"

// wrapWriteErr maps unique-constraint violations to Conflict and wraps
// everything else with op.
func wrapWriteErr(err error, op, conflictMsg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return xerrors.Conflict(conflictMsg).With("constraint", pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}
