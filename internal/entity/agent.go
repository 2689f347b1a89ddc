package entity

import "context"

type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Active bool   `json:"active"`
}

type AgentRepository interface {
	// FindByID busca o agente ignorando a flag active — o rodízio precisa
	// do último nome conhecido mesmo de quem já saiu do time.
	FindByID(ctx context.Context, id string) (*Agent, error)

	FindActiveByTeams(ctx context.Context, teamIDs []string) ([]Agent, error)
	FindTeamsBySite(ctx context.Context, siteID int) ([]string, error)
	FindDefaultTeamByCategory(ctx context.Context, categoryID string) (string, error)

	// FindAnyActive é o fallback quando não há roster elegível.
	FindAnyActive(ctx context.Context) (*Agent, error)
}
