package entity

import (
	"context"
	"time"
)

// RotationState é a única autoridade durável sobre "de quem é a vez"
// por (unidade, categoria). No máximo uma linha por par.
type RotationState struct {
	SiteID         int       `json:"site_id"`
	CategoryID     string    `json:"category_id"`
	LastAgentID    string    `json:"last_agent_id"`
	LastAssignedAt time.Time `json:"last_assigned_at"`
	LastLeadID     *string   `json:"last_lead_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type RotationStateRepository interface {
	// Get retorna (nil, nil) quando o par ainda não tem linha.
	Get(ctx context.Context, siteID int, categoryID string) (*RotationState, error)

	// Record faz upsert atômico da posição do rodízio. Last writer wins.
	Record(ctx context.Context, siteID int, categoryID, agentID, leadID string) error
}
