package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type PickNextUseCase struct {
	Roster   *RosterResolver
	Rotation entity.RotationStateRepository
	Agents   entity.AgentRepository
}

func NewPickNextUseCase(
	roster *RosterResolver,
	rotation entity.RotationStateRepository,
	agents entity.AgentRepository,
) *PickNextUseCase {
	return &PickNextUseCase{Roster: roster, Rotation: rotation, Agents: agents}
}

// Execute lê o estado durável do rodízio e devolve o próximo agente da vez.
// Cada chamada lê o estado fresco — nunca cache entre chamadas: quem quiser
// cursor de execução (job de lote) mantém o seu próprio por cima do NextAgent.
func (uc *PickNextUseCase) Execute(ctx context.Context, categoryID string, siteID *int) (entity.Agent, error) {
	roster, err := uc.Roster.Resolve(ctx, categoryID, siteID)
	if err != nil {
		return entity.Agent{}, err
	}

	site := 0
	if siteID != nil {
		site = *siteID
	}

	state, err := uc.Rotation.Get(ctx, site, categoryID)
	if err != nil {
		return entity.Agent{}, fmt.Errorf("falha ao ler rodízio (%d, %s): %w", site, categoryID, err)
	}

	var last *entity.Agent
	if state != nil {
		// Busca ignorando a flag active: se o agente saiu do time, o
		// NextAgent usa o nome dele para inferir o sucessor alfabético.
		// Se nem o cadastro existe mais, o rodízio recomeça do primeiro.
		last, err = uc.Agents.FindByID(ctx, state.LastAgentID)
		if err != nil {
			return entity.Agent{}, fmt.Errorf("falha ao buscar último agente %s: %w", state.LastAgentID, err)
		}
	}

	return NextAgent(roster, last)
}
