package worker

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// LeadAssigner é a transação de atribuição (usecase.AssignLeadUseCase).
type LeadAssigner interface {
	Execute(ctx context.Context, lead *entity.Lead, agent entity.Agent, origin string) error
}

// BulkAssignmentWorker drena os leads sem agente nos dois horários fixos
// do dia. Guarda single-flight: gatilho durante execução é no-op.
type BulkAssignmentWorker struct {
	Leads    entity.LeadRepository
	Roster   *usecase.RosterResolver
	Rotation entity.RotationStateRepository
	Agents   entity.AgentRepository
	Assigner LeadAssigner

	Schedules []string // "HH:MM" no fuso local

	running atomic.Bool
}

func NewBulkAssignmentWorker(
	leads entity.LeadRepository,
	roster *usecase.RosterResolver,
	rotation entity.RotationStateRepository,
	agents entity.AgentRepository,
	assigner LeadAssigner,
) *BulkAssignmentWorker {
	return &BulkAssignmentWorker{
		Leads:     leads,
		Roster:    roster,
		Rotation:  rotation,
		Agents:    agents,
		Assigner:  assigner,
		Schedules: []string{"09:30", "15:00"},
	}
}

func (w *BulkAssignmentWorker) Running() bool {
	return w.running.Load()
}

func (w *BulkAssignmentWorker) Start(ctx context.Context) {
	log.Printf("🕒 Atribuição em lote agendada para %v", w.Schedules)

	for {
		next := nextFiring(time.Now(), w.Schedules)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("⚠️ Atribuição em lote encerrada")
			return
		case <-timer.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executa um lote completo. Retorna false quando outra execução já
// está em andamento — o gatilho é descartado em silêncio, nunca enfileirado.
func (w *BulkAssignmentWorker) RunOnce(ctx context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		log.Println("⏭️ Atribuição em lote já em execução, gatilho ignorado")
		return false
	}
	defer w.running.Store(false)

	leads, err := w.Leads.FindUnassigned(ctx)
	if err != nil {
		log.Printf("❌ Falha ao buscar leads sem agente: %v", err)
		return true
	}
	if len(leads) == 0 {
		log.Println("📭 Nenhum lead aguardando atribuição")
		return true
	}

	// Cursor do rodízio com vida útil de UMA execução: a categoria lê o
	// estado durável na primeira vez e depois avança em memória, para que
	// 50 leads da mesma categoria girem o rodízio sem reler o banco.
	cursor := map[string]entity.Agent{}
	assigned := 0

	for _, lead := range leads {
		if lead.CategoryID == nil {
			log.Printf("⚠️ Lead %s sem categoria, deixado para atribuição manual", lead.ID)
			continue
		}

		leadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		agent, err := w.nextFor(leadCtx, lead, cursor)
		if err != nil {
			cancel()
			// Um lead ruim nunca derruba o lote inteiro.
			log.Printf("⚠️ Lead %s (categoria %s): %v", lead.ID, *lead.CategoryID, err)
			continue
		}

		if err := w.Assigner.Execute(leadCtx, lead, agent, usecase.OriginBulk); err != nil {
			cancel()
			log.Printf("❌ Falha ao atribuir lead %s: %v", lead.ID, err)
			continue
		}
		cancel()

		cursor[*lead.CategoryID] = agent
		assigned++
		middleware.RecordAssignment(usecase.OriginBulk, *lead.CategoryID)
	}

	log.Printf("✅ Lote concluído: %d/%d leads atribuídos", assigned, len(leads))
	return true
}

func (w *BulkAssignmentWorker) nextFor(ctx context.Context, lead *entity.Lead, cursor map[string]entity.Agent) (entity.Agent, error) {
	roster, err := w.Roster.Resolve(ctx, *lead.CategoryID, lead.SiteID)
	if err != nil {
		return entity.Agent{}, err
	}

	var last *entity.Agent
	if a, ok := cursor[*lead.CategoryID]; ok {
		last = &a
	} else {
		state, err := w.Rotation.Get(ctx, lead.RotationSiteID(), *lead.CategoryID)
		if err != nil {
			return entity.Agent{}, fmt.Errorf("falha ao ler rodízio: %w", err)
		}
		if state != nil {
			last, err = w.Agents.FindByID(ctx, state.LastAgentID)
			if err != nil {
				return entity.Agent{}, fmt.Errorf("falha ao buscar último agente: %w", err)
			}
		}
	}

	return usecase.NextAgent(roster, last)
}

// nextFiring devolve o próximo horário de disparo dentre os agendados.
func nextFiring(now time.Time, schedules []string) time.Time {
	var best time.Time
	for _, s := range schedules {
		t, err := time.ParseInLocation("15:04", s, now.Location())
		if err != nil {
			log.Printf("⚠️ Horário de lote inválido %q, ignorado", s)
			continue
		}
		fire := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !fire.After(now) {
			fire = fire.Add(24 * time.Hour)
		}
		if best.IsZero() || fire.Before(best) {
			best = fire
		}
	}
	if best.IsZero() {
		return now.Add(24 * time.Hour)
	}
	return best
}
