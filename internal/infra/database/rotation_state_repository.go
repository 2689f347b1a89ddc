package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type RotationStateRepository struct {
	DB *sql.DB
}

func NewRotationStateRepository(db *sql.DB) *RotationStateRepository {
	return &RotationStateRepository{DB: db}
}

func (r *RotationStateRepository) Get(ctx context.Context, siteID int, categoryID string) (*entity.RotationState, error) {
	query := `
		SELECT site_id, category_id, last_agent_id, last_assigned_at, last_lead_id, updated_at
		FROM rotation_states
		WHERE site_id = $1 AND category_id = $2
	`

	var state entity.RotationState
	var lastLeadID sql.NullString

	err := r.DB.QueryRowContext(ctx, query, siteID, categoryID).Scan(
		&state.SiteID,
		&state.CategoryID,
		&state.LastAgentID,
		&state.LastAssignedAt,
		&lastLeadID,
		&state.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Par sem histórico: o rodízio começa do primeiro do roster.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lastLeadID.Valid {
		state.LastLeadID = &lastLeadID.String
	}
	return &state, nil
}

// Record é o upsert atômico da posição do rodízio. Escritores concorrentes
// para o mesmo par: vence quem commitar por último.
func (r *RotationStateRepository) Record(ctx context.Context, siteID int, categoryID, agentID, leadID string) error {
	query := `
		INSERT INTO rotation_states (site_id, category_id, last_agent_id, last_assigned_at, last_lead_id, updated_at)
		VALUES ($1, $2, $3, NOW(), $4, NOW())
		ON CONFLICT (site_id, category_id)
		DO UPDATE SET
			last_agent_id = EXCLUDED.last_agent_id,
			last_assigned_at = NOW(),
			last_lead_id = EXCLUDED.last_lead_id,
			updated_at = NOW()
	`

	_, err := r.DB.ExecContext(ctx, query, siteID, categoryID, agentID, nullString(leadID))
	return err
}
