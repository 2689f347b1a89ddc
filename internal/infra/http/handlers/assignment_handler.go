package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// BulkRunner é o job de lote, para o gatilho manual.
type BulkRunner interface {
	RunOnce(ctx context.Context) bool
	Running() bool
}

type AssignmentHandler struct {
	leadRepo entity.LeadRepository
	agents   entity.AgentRepository
	rotation entity.RotationStateRepository
	picker   NextPicker
	assigner LeadAssigner
	bulk     BulkRunner
}

func NewAssignmentHandler(
	leadRepo entity.LeadRepository,
	agents entity.AgentRepository,
	rotation entity.RotationStateRepository,
	picker NextPicker,
	assigner LeadAssigner,
	bulk BulkRunner,
) *AssignmentHandler {
	return &AssignmentHandler{
		leadRepo: leadRepo,
		agents:   agents,
		rotation: rotation,
		picker:   picker,
		assigner: assigner,
		bulk:     bulk,
	}
}

type AssignRequest struct {
	// AgentID vazio = próximo do rodízio.
	AgentID string `json:"agent_id,omitempty"`
}

type AssignResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Lead    *entity.Lead  `json:"lead,omitempty"`
	Agent   *entity.Agent `json:"agent,omitempty"`
}

// HandleAssign atende atribuição/reatribuição manual. Diferente dos jobs,
// aqui o erro volta para quem chamou.
func (h *AssignmentHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID := chi.URLParam(r, "id")

	lead, err := h.leadRepo.FindByID(ctx, leadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, AssignResponse{Success: false, Message: "Lead não encontrado"})
		return
	}
	if err != nil {
		log.Printf("❌ Falha ao buscar lead %s: %v", leadID, err)
		writeJSON(w, http.StatusInternalServerError, AssignResponse{Success: false, Message: "Erro interno"})
		return
	}

	var req AssignRequest
	if r.Body != nil {
		// Corpo vazio é válido: significa "próximo do rodízio".
		json.NewDecoder(r.Body).Decode(&req)
	}

	var agent entity.Agent
	if req.AgentID != "" {
		found, err := h.agents.FindByID(ctx, req.AgentID)
		if err != nil {
			log.Printf("❌ Falha ao buscar agente %s: %v", req.AgentID, err)
			writeJSON(w, http.StatusInternalServerError, AssignResponse{Success: false, Message: "Erro interno"})
			return
		}
		if found == nil {
			writeJSON(w, http.StatusNotFound, AssignResponse{Success: false, Message: "Agente não encontrado"})
			return
		}
		if !found.Active {
			writeJSON(w, http.StatusUnprocessableEntity, AssignResponse{Success: false, Message: "Agente inativo"})
			return
		}
		agent = *found
	} else {
		if lead.CategoryID == nil {
			writeJSON(w, http.StatusUnprocessableEntity, AssignResponse{Success: false, Message: "Lead sem categoria: informe agent_id"})
			return
		}
		agent, err = h.pickForLead(ctx, lead)
		if errors.Is(err, entity.ErrNoEligibleAgents) {
			writeJSON(w, http.StatusConflict, AssignResponse{Success: false, Message: "Nenhum agente elegível"})
			return
		}
		if err != nil {
			log.Printf("❌ Falha no rodízio para lead %s: %v", leadID, err)
			writeJSON(w, http.StatusInternalServerError, AssignResponse{Success: false, Message: "Erro interno"})
			return
		}
	}

	if err := h.assigner.Execute(ctx, lead, agent, usecase.OriginManual); err != nil {
		log.Printf("❌ Atribuição manual do lead %s falhou: %v", leadID, err)
		writeJSON(w, http.StatusInternalServerError, AssignResponse{Success: false, Message: err.Error()})
		return
	}

	if lead.CategoryID != nil {
		middleware.RecordAssignment(usecase.OriginManual, *lead.CategoryID)
	}

	writeJSON(w, http.StatusOK, AssignResponse{Success: true, Lead: lead, Agent: &agent})
}

func (h *AssignmentHandler) pickForLead(ctx context.Context, lead *entity.Lead) (entity.Agent, error) {
	agent, err := h.picker.Execute(ctx, *lead.CategoryID, lead.SiteID)
	if err == nil {
		return agent, nil
	}
	if !errors.Is(err, entity.ErrNoEligibleAgents) {
		return entity.Agent{}, err
	}

	any, err := h.agents.FindAnyActive(ctx)
	if err != nil {
		return entity.Agent{}, err
	}
	return *any, nil
}

// HandleGetRotation expõe a linha do rodízio para operação/suporte.
func (h *AssignmentHandler) HandleGetRotation(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	siteID := 0
	if raw := r.URL.Query().Get("site_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, AssignResponse{Success: false, Message: "site_id inválido"})
			return
		}
		siteID = parsed
	}

	state, err := h.rotation.Get(r.Context(), siteID, categoryID)
	if err != nil {
		log.Printf("❌ Falha ao ler rodízio (%d, %s): %v", siteID, categoryID, err)
		writeJSON(w, http.StatusInternalServerError, AssignResponse{Success: false, Message: "Erro interno"})
		return
	}
	if state == nil {
		writeJSON(w, http.StatusNotFound, AssignResponse{Success: false, Message: "Par sem histórico de rodízio"})
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// HandleRunBulk dispara o lote manualmente. O guard single-flight do job
// continua valendo: se já está rodando, devolve 409.
func (h *AssignmentHandler) HandleRunBulk(w http.ResponseWriter, r *http.Request) {
	if h.bulk.Running() {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"message": "Lote já em execução",
		})
		return
	}

	go h.bulk.RunOnce(context.Background())

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Lote disparado",
	})
}
