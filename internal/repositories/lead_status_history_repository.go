package repositories

import (
	"context"
	"fmt"

	"irisai/internal/models"
)

type LeadStatusHistoryRepository interface {
	Create(ctx context.Context, change *models.LeadStatusChange) error
	ListByLead(ctx context.Context, leadID string) ([]*models.LeadStatusChange, error)
}

type leadStatusHistoryRepository struct {
	db DBTX
}

func NewLeadStatusHistoryRepository(db DBTX) LeadStatusHistoryRepository {
	return &leadStatusHistoryRepository{db: db}
}

func (r *leadStatusHistoryRepository) Create(ctx context.Context, c *models.LeadStatusChange) error {
	const q = `
		INSERT INTO lead_status_history (id, lead_id, previous_status, new_status, notes, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.LeadID, c.PreviousStatus, c.NewStatus, c.Notes, c.ChangedBy, c.Reason, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead status history: %w", err)
	}
	return nil
}

func (r *leadStatusHistoryRepository) ListByLead(ctx context.Context, leadID string) ([]*models.LeadStatusChange, error) {
	const q = `
		SELECT id, lead_id, previous_status, new_status, notes, changed_by, reason, created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead status history: %w", err)
	}
	defer rows.Close()

	out := []*models.LeadStatusChange{}
	for rows.Next() {
		var c models.LeadStatusChange
		if err := rows.Scan(&c.ID, &c.LeadID, &c.PreviousStatus, &c.NewStatus, &c.Notes, &c.ChangedBy, &c.Reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead status history: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
