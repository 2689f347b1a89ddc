package usecase

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// newCollator cria o comparador pt-BR usado tanto na ordenação do roster
// quanto na inferência de sucessor. Collator não é seguro para uso
// concorrente, então cada chamada cria o seu.
func newCollator() *collate.Collator {
	return collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
}

// SortRoster ordena o roster por nome de exibição (pt-BR, case-insensitive).
// Essa ordem É a ordem do rodízio — nunca dependa da ordem que veio do banco.
func SortRoster(roster []entity.Agent) {
	c := newCollator()
	sort.SliceStable(roster, func(i, j int) bool {
		return c.CompareString(roster[i].Name, roster[j].Name) < 0
	})
}

// NextAgent é função pura: (roster ordenado, último agente atribuído) -> próximo.
//
//  1. Sem atribuição anterior: devolve o primeiro do roster.
//  2. Último agente presente no roster: devolve o seguinte, com wrap.
//  3. Último agente saiu do roster: herda a vez o primeiro nome que ordena
//     depois do último nome conhecido dele. É aproximação de justiça, não
//     garantia estrita — se ele era o último alfabético, volta ao início.
func NextAgent(roster []entity.Agent, last *entity.Agent) (entity.Agent, error) {
	if len(roster) == 0 {
		return entity.Agent{}, entity.ErrNoEligibleAgents
	}
	if last == nil {
		return roster[0], nil
	}

	for i := range roster {
		if roster[i].ID == last.ID {
			return roster[(i+1)%len(roster)], nil
		}
	}

	c := newCollator()
	for i := range roster {
		if c.CompareString(roster[i].Name, last.Name) > 0 {
			return roster[i], nil
		}
	}
	return roster[0], nil
}
