package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// Origem da atribuição — vai no payload de notificação e nas métricas.
const (
	OriginCapture      = "CAPTURA"
	OriginManual       = "MANUAL"
	OriginBulk         = "LOTE"
	OriginReassignment = "REATRIBUICAO"
)

type NotificationPublisher interface {
	PublishAssignment(ctx context.Context, payload queue.AssignmentPayload) error
}

type AssignLeadUseCase struct {
	Leads        entity.LeadRepository
	Rotation     entity.RotationStateRepository
	Queue        NotificationPublisher
	PanelBaseURL string

	// Retentativa para falha transitória de persistência: 3 tentativas,
	// backoff exponencial a partir de RetryBase.
	MaxAttempts int
	RetryBase   time.Duration
}

func NewAssignLeadUseCase(
	leads entity.LeadRepository,
	rotation entity.RotationStateRepository,
	producer NotificationPublisher,
	panelBaseURL string,
) *AssignLeadUseCase {
	return &AssignLeadUseCase{
		Leads:        leads,
		Rotation:     rotation,
		Queue:        producer,
		PanelBaseURL: panelBaseURL,
		MaxAttempts:  3,
		RetryBase:    250 * time.Millisecond,
	}
}

// Execute é a transação de atribuição: grava agente + deep-link no lead,
// faz upsert da posição do rodízio e publica a notificação. A notificação
// é melhor esforço — falha nela nunca desfaz a atribuição.
func (uc *AssignLeadUseCase) Execute(ctx context.Context, lead *entity.Lead, agent entity.Agent, origin string) error {
	if agent.ID == "" {
		return &DomainError{
			Code:    "INVALID_AGENT",
			Message: "atribuição sem agente: o rodízio devolveu um agente vazio",
		}
	}

	link := fmt.Sprintf("%s/leads/%s?agente=%s", uc.PanelBaseURL, lead.ID, agent.ID)

	// A mutação do lead e o upsert do rodízio formam UMA unidade durável:
	// ou as duas persistem, ou nenhuma. updated marca que a primeira metade
	// chegou ao banco, para a compensação saber o que desfazer.
	updated := false
	commit := func(ctx context.Context) error {
		if err := uc.Leads.UpdateAssignment(ctx, lead.ID, agent.ID, link); err != nil {
			return err
		}
		updated = true
		// Leads reabertos (REF-) e leads sem categoria não movem o rodízio.
		if lead.CategoryID != nil && !lead.IsReopened() {
			return uc.Rotation.Record(ctx, lead.RotationSiteID(), *lead.CategoryID, agent.ID, lead.ID)
		}
		return nil
	}

	var err error
	delay := uc.RetryBase
	for attempt := 1; attempt <= uc.MaxAttempts; attempt++ {
		if err = commit(ctx); err == nil {
			break
		}
		if errors.Is(err, entity.ErrLeadNotFound) {
			return err // não é transitório, insistir não ajuda
		}
		if attempt < uc.MaxAttempts {
			log.Printf("⚠️ Atribuição do lead %s falhou (tentativa %d/%d): %v", lead.ID, attempt, uc.MaxAttempts, err)
			if !sleepBackoff(ctx, delay) {
				log.Printf("⚠️ Atribuição do lead %s interrompida: %v", lead.ID, ctx.Err())
				break
			}
			delay *= 2
		}
	}
	if err != nil {
		if updated {
			uc.compensate(lead)
		}
		return &TechnicalError{
			Code:    "ASSIGNMENT_FAILED",
			Message: fmt.Sprintf("lead %s: esgotadas %d tentativas: %v", lead.ID, uc.MaxAttempts, err),
		}
	}

	lead.AgentID = &agent.ID
	lead.PanelLink = link
	lead.ModifiedAt = time.Now()

	payload := queue.AssignmentPayload{
		LeadID:     lead.ID,
		LeadName:   lead.Name,
		SiteID:     lead.RotationSiteID(),
		AgentID:    agent.ID,
		AgentName:  agent.Name,
		AgentEmail: agent.Email,
		PanelLink:  link,
		Origin:     origin,
		Reassigned: origin == OriginReassignment,
	}
	if lead.CategoryID != nil {
		payload.CategoryID = *lead.CategoryID
	}

	if err := uc.Queue.PublishAssignment(ctx, payload); err != nil {
		log.Printf("⚠️ Lead %s atribuído, mas falha ao publicar notificação: %v", lead.ID, err)
	}

	log.Printf("✅ Lead %s (%s) atribuído para %s [%s]", lead.ID, lead.Name, agent.Name, origin)
	return nil
}

// compensate desfaz a mutação do lead quando o rodízio não persistiu:
// o lead volta para a fila de não-atribuídos e o próximo lote tenta de
// novo. Contexto próprio — o original pode já estar cancelado.
func (uc *AssignLeadUseCase) compensate(lead *entity.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := uc.Leads.ClearAssignment(ctx, lead.ID); err != nil {
		log.Printf("⚠️ Compensação do lead %s falhou: %v (risco de inconsistência)", lead.ID, err)
		return
	}
	log.Printf("🔁 Lead %s devolvido à fila: atribuição desfeita após esgotar retentativas", lead.ID)
}

// sleepBackoff espera o intervalo de backoff ou o cancelamento do
// contexto, o que vier primeiro. Retorna false quando o contexto caiu.
func sleepBackoff(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
