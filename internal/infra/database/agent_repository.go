package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// AgentRepository lê a base de membros (agentes, times, mapeamento
// unidade->times). Este serviço nunca escreve nela.
type AgentRepository struct {
	DB *sql.DB
}

func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{DB: db}
}

func (r *AgentRepository) FindByID(ctx context.Context, id string) (*entity.Agent, error) {
	query := `SELECT id, name, COALESCE(email, ''), active FROM agents WHERE id = $1`

	var agent entity.Agent
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Active)
	if errors.Is(err, sql.ErrNoRows) {
		// Cadastro apagado: o rodízio trata como ausência de histórico.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepository) FindActiveByTeams(ctx context.Context, teamIDs []string) ([]entity.Agent, error) {
	query := `
		SELECT DISTINCT a.id, a.name, COALESCE(a.email, ''), a.active
		FROM agents a
		JOIN team_members tm ON tm.agent_id = a.id
		WHERE tm.team_id = ANY($1) AND a.active = TRUE
	`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []entity.Agent
	for rows.Next() {
		var agent entity.Agent
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Active); err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

func (r *AgentRepository) FindTeamsBySite(ctx context.Context, siteID int) ([]string, error) {
	query := `SELECT team_id FROM site_teams WHERE site_id = $1`

	rows, err := r.DB.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		teams = append(teams, id)
	}
	return teams, rows.Err()
}

func (r *AgentRepository) FindDefaultTeamByCategory(ctx context.Context, categoryID string) (string, error) {
	query := `SELECT COALESCE(default_team_id, '') FROM categories WHERE id = $1`

	var teamID string
	err := r.DB.QueryRowContext(ctx, query, categoryID).Scan(&teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return teamID, nil
}

// FindAnyActive sorteia um agente ativo qualquer — fallback de quem chama
// quando o roster resolve vazio.
func (r *AgentRepository) FindAnyActive(ctx context.Context) (*entity.Agent, error) {
	query := `SELECT id, name, COALESCE(email, ''), active FROM agents WHERE active = TRUE ORDER BY random() LIMIT 1`

	var agent entity.Agent
	err := r.DB.QueryRowContext(ctx, query).Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNoEligibleAgents
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}
