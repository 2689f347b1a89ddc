package worker

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// NextPicker lê o estado durável do rodízio e devolve o próximo agente
// (usecase.PickNextUseCase).
type NextPicker interface {
	Execute(ctx context.Context, categoryID string, siteID *int) (entity.Agent, error)
}

// ReassignmentWorker varre leads atribuídos cujo agente não registrou
// follow-up dentro do prazo e devolve cada um ao rodízio. Tick curto,
// mas só age dentro das janelas de reatribuição.
type ReassignmentWorker struct {
	Leads    entity.LeadRepository
	Picker   NextPicker
	Assigner LeadAssigner

	Tick       time.Duration
	StaleAfter time.Duration

	running atomic.Bool
}

func NewReassignmentWorker(leads entity.LeadRepository, picker NextPicker, assigner LeadAssigner) *ReassignmentWorker {
	return &ReassignmentWorker{
		Leads:      leads,
		Picker:     picker,
		Assigner:   assigner,
		Tick:       2 * time.Second,
		StaleAfter: 10 * time.Minute,
	}
}

func (w *ReassignmentWorker) Start(ctx context.Context) {
	log.Printf("🔁 Varredura de reatribuição a cada %s (timeout de follow-up: %s)", w.Tick, w.StaleAfter)

	ticker := time.NewTicker(w.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Varredura de reatribuição encerrada")
			return
		case <-ticker.C:
			w.RunOnce(ctx, time.Now())
		}
	}
}

// RunOnce processa um tick da varredura. Fora da janela é no-op imediato;
// com outra varredura em andamento o tick é descartado.
func (w *ReassignmentWorker) RunOnce(ctx context.Context, now time.Time) {
	if !usecase.InReassignmentWindow(now) {
		return
	}
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	defer w.running.Store(false)

	leads, err := w.Leads.FindStaleAssigned(ctx, now.Add(-w.StaleAfter))
	if err != nil {
		log.Printf("❌ Falha ao buscar leads sem follow-up: %v", err)
		return
	}

	// Reatribui TODOS os qualificados do tick, cada um lendo o estado
	// durável na hora — sem cursor de execução, cada reatribuição é
	// independente das demais.
	for _, lead := range leads {
		if lead.CategoryID == nil || lead.IsReopened() {
			continue
		}

		leadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		agent, err := w.Picker.Execute(leadCtx, *lead.CategoryID, lead.SiteID)
		if err != nil {
			cancel()
			log.Printf("⚠️ Reatribuição do lead %s: %v", lead.ID, err)
			continue
		}

		waited := now.Sub(lead.ModifiedAt).Round(time.Minute)
		if err := w.Assigner.Execute(leadCtx, lead, agent, usecase.OriginReassignment); err != nil {
			cancel()
			log.Printf("❌ Falha ao reatribuir lead %s: %v", lead.ID, err)
			continue
		}
		cancel()

		middleware.RecordReassignment(*lead.CategoryID)
		log.Printf("🔁 Lead %s sem follow-up há %s, reatribuído para %s", lead.ID, waited, agent.Name)
	}
}
