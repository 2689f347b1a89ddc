package entity

import "errors"

var (
	ErrNoEligibleAgents = errors.New("nenhum agente elegível para o rodízio")
	ErrLeadNotFound     = errors.New("lead não encontrado")
)
