package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type RosterResolver struct {
	Agents entity.AgentRepository
}

func NewRosterResolver(agents entity.AgentRepository) *RosterResolver {
	return &RosterResolver{Agents: agents}
}

// Resolve monta a lista ordenada de agentes elegíveis para (categoria, unidade).
// Se a unidade tem mapeamento de times configurado, ele vence; senão cai no
// time padrão da categoria. Lista vazia vira ErrNoEligibleAgents — quem decide
// o fallback (agente aleatório ou abortar) é o chamador.
func (r *RosterResolver) Resolve(ctx context.Context, categoryID string, siteID *int) ([]entity.Agent, error) {
	var teams []string

	if siteID != nil {
		mapped, err := r.Agents.FindTeamsBySite(ctx, *siteID)
		if err != nil {
			return nil, fmt.Errorf("falha ao buscar times da unidade %d: %w", *siteID, err)
		}
		teams = mapped
	}

	if len(teams) == 0 {
		def, err := r.Agents.FindDefaultTeamByCategory(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("falha ao buscar time padrão da categoria %s: %w", categoryID, err)
		}
		if def != "" {
			teams = []string{def}
		}
	}

	if len(teams) == 0 {
		return nil, entity.ErrNoEligibleAgents
	}

	roster, err := r.Agents.FindActiveByTeams(ctx, teams)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar agentes dos times %v: %w", teams, err)
	}
	if len(roster) == 0 {
		return nil, entity.ErrNoEligibleAgents
	}

	SortRoster(roster)
	return roster, nil
}
