package entity

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Estados de follow-up do lead. Quem grava "in-progress" é o CRM,
// quando o agente registra o primeiro contato com o cliente.
const (
	FollowUpNone       = "none"
	FollowUpInProgress = "in-progress"
)

// Leads reabertos/duplicados chegam do CRM com sufixo " REF-N" no nome.
// Eles nunca entram na contabilidade do rodízio.
var reopenedPattern = regexp.MustCompile(` REF-\d+$`)

type Lead struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	SiteID        *int       `json:"site_id,omitempty"`
	CategoryID    *string    `json:"category_id,omitempty"`
	AgentID       *string    `json:"agent_id,omitempty"`
	PanelLink     string     `json:"panel_link,omitempty"`
	FollowUpState string     `json:"follow_up_state"`
	Deleted       bool       `json:"deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	ModifiedAt    time.Time  `json:"modified_at"`
}

func NewLead(name, email, phone string, siteID *int, categoryID *string) *Lead {
	now := time.Now()
	return &Lead{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		Phone:         phone,
		SiteID:        siteID,
		CategoryID:    categoryID,
		FollowUpState: FollowUpNone,
		CreatedAt:     now,
		ModifiedAt:    now,
	}
}

func (l *Lead) IsReopened() bool {
	return reopenedPattern.MatchString(l.Name)
}

// RotationSiteID normaliza a chave de unidade do rodízio: 0 = sem unidade.
func (l *Lead) RotationSiteID() int {
	if l.SiteID == nil {
		return 0
	}
	return *l.SiteID
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)

	// FindUnassigned retorna leads sem agente, não deletados,
	// ordenados por created_at ASC (o mais antigo espera há mais tempo).
	FindUnassigned(ctx context.Context) ([]*Lead, error)

	// FindStaleAssigned retorna leads atribuídos, não deletados, sem
	// follow-up e que não são reabertos, com modified_at <= olderThan.
	FindStaleAssigned(ctx context.Context, olderThan time.Time) ([]*Lead, error)

	UpdateAssignment(ctx context.Context, leadID, agentID, panelLink string) error

	// ClearAssignment desfaz a atribuição: agente e deep-link voltam a
	// NULL e o lead reaparece no FindUnassigned.
	ClearAssignment(ctx context.Context, leadID string) error
}
