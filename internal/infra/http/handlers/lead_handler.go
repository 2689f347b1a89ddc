package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

// NextPicker e LeadAssigner espelham os use cases de rodízio para os
// handlers serem testáveis com mock.
type NextPicker interface {
	Execute(ctx context.Context, categoryID string, siteID *int) (entity.Agent, error)
}

type LeadAssigner interface {
	Execute(ctx context.Context, lead *entity.Lead, agent entity.Agent, origin string) error
}

type LeadHandler struct {
	leadRepo    entity.LeadRepository
	agents      entity.AgentRepository
	picker      NextPicker
	assigner    LeadAssigner
	rateLimiter *RateLimiter
	now         func() time.Time
}

func NewLeadHandler(leadRepo entity.LeadRepository, agents entity.AgentRepository, picker NextPicker, assigner LeadAssigner) *LeadHandler {
	return &LeadHandler{
		leadRepo:    leadRepo,
		agents:      agents,
		picker:      picker,
		assigner:    assigner,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min por IP
		now:         time.Now,
	}
}

type CaptureLeadRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	SiteID     *int    `json:"site_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}

type CaptureLeadResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	LeadID   string        `json:"lead_id,omitempty"`
	Assigned bool          `json:"assigned"`
	Agent    *entity.Agent `json:"agent,omitempty"`
}

// CaptureLead cria o lead e, dentro do horário comercial e com categoria
// conhecida, já o atribui pelo rodízio. Fora do horário o lead fica sem
// agente até o lote (ou ação manual).
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeJSON(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Success: false,
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var req CaptureLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{
			Success: false,
			Message: "Invalid JSON",
		})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{
			Success: false,
			Message: "Name is required",
		})
		return
	}

	lead := entity.NewLead(req.Name, req.Email, req.Phone, req.SiteID, req.CategoryID)

	if err := h.leadRepo.Create(ctx, lead); err != nil {
		log.Printf("❌ Falha ao gravar lead capturado: %v", err)
		writeJSON(w, http.StatusInternalServerError, CaptureLeadResponse{
			Success: false,
			Message: "Failed to capture lead",
		})
		return
	}

	resp := CaptureLeadResponse{Success: true, LeadID: lead.ID}

	if lead.CategoryID != nil && usecase.IsAssignable(h.now()) {
		agent, err := h.pickWithFallback(r, lead)
		if err != nil {
			// Lead capturado vale mesmo sem atribuição; o lote pega depois.
			log.Printf("⚠️ Lead %s capturado sem atribuição: %v", lead.ID, err)
		} else if err := h.assigner.Execute(ctx, lead, agent, usecase.OriginCapture); err != nil {
			log.Printf("⚠️ Lead %s capturado, atribuição falhou: %v", lead.ID, err)
		} else {
			middleware.RecordAssignment(usecase.OriginCapture, *lead.CategoryID)
			resp.Assigned = true
			resp.Agent = &agent
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *LeadHandler) pickWithFallback(r *http.Request, lead *entity.Lead) (entity.Agent, error) {
	agent, err := h.picker.Execute(r.Context(), *lead.CategoryID, lead.SiteID)
	if err == nil {
		return agent, nil
	}
	if !errors.Is(err, entity.ErrNoEligibleAgents) {
		return entity.Agent{}, err
	}

	// Roster vazio no caminho síncrono: cai para qualquer agente ativo.
	any, err := h.agents.FindAnyActive(r.Context())
	if err != nil {
		return entity.Agent{}, err
	}
	return *any, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	stop     chan struct{}
	done     chan struct{}
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go rl.cleanup()
	return rl
}

// Stop encerra a goroutine de limpeza e espera ela sair. Chamar uma vez.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
	<-rl.done
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	defer close(rl.done)

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
