package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), site_id, category_id,
	agent_id, COALESCE(panel_link, ''), follow_up_state, deleted, created_at, modified_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, site_id, category_id, follow_up_state, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		lead.SiteID,
		lead.CategoryID,
		lead.FollowUpState,
		lead.CreatedAt,
		lead.ModifiedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) FindUnassigned(ctx context.Context) ([]*entity.Lead, error) {
	// Mais antigo primeiro: o lead que espera há mais tempo sai na frente.
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE agent_id IS NULL AND deleted = FALSE
		ORDER BY created_at ASC
	`
	return r.queryLeads(ctx, query)
}

func (r *LeadRepository) FindStaleAssigned(ctx context.Context, olderThan time.Time) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE agent_id IS NOT NULL
		  AND deleted = FALSE
		  AND follow_up_state = 'none'
		  AND name !~ ' REF-\d+$'
		  AND modified_at <= $1
		ORDER BY modified_at ASC
	`
	return r.queryLeads(ctx, query, olderThan)
}

func (r *LeadRepository) UpdateAssignment(ctx context.Context, leadID, agentID, panelLink string) error {
	query := `
		UPDATE leads
		SET agent_id = $2, panel_link = $3, modified_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query, leadID, agentID, panelLink)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) ClearAssignment(ctx context.Context, leadID string) error {
	query := `
		UPDATE leads
		SET agent_id = NULL, panel_link = NULL, modified_at = NOW()
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query, leadID)
	return err
}

func (r *LeadRepository) queryLeads(ctx context.Context, query string, args ...interface{}) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var siteID sql.NullInt64
	var categoryID, agentID sql.NullString

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&siteID,
		&categoryID,
		&agentID,
		&lead.PanelLink,
		&lead.FollowUpState,
		&lead.Deleted,
		&lead.CreatedAt,
		&lead.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if siteID.Valid {
		v := int(siteID.Int64)
		lead.SiteID = &v
	}
	if categoryID.Valid {
		lead.CategoryID = &categoryID.String
	}
	if agentID.Valid {
		lead.AgentID = &agentID.String
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
