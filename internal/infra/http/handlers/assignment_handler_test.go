package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func assignFixture() (*AssignmentHandler, *MockLeadRepository, *MockAgentRepository, *MockRotationRepository, *MockPicker, *MockAssigner, *fakeBulk) {
	leads := new(MockLeadRepository)
	agents := new(MockAgentRepository)
	rotation := new(MockRotationRepository)
	picker := new(MockPicker)
	assigner := new(MockAssigner)
	bulk := &fakeBulk{}

	h := NewAssignmentHandler(leads, agents, rotation, picker, assigner, bulk)
	return h, leads, agents, rotation, picker, assigner, bulk
}

func assignRouter(h *AssignmentHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/leads/{id}/assign", h.HandleAssign)
	r.Get("/rotation/{categoryID}", h.HandleGetRotation)
	r.Post("/jobs/bulk-assignment/run", h.HandleRunBulk)
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body == "" {
		buf = bytes.NewBuffer(nil)
	} else {
		buf = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func assignedLead(id string) *entity.Lead {
	cat := "graduacao"
	site := 2
	return &entity.Lead{
		ID:            id,
		Name:          "Maria Souza",
		SiteID:        &site,
		CategoryID:    &cat,
		FollowUpState: entity.FollowUpNone,
		CreatedAt:     time.Now(),
		ModifiedAt:    time.Now(),
	}
}

// TestAssignLeadInexistenteEh404
func TestAssignLeadInexistenteEh404(t *testing.T) {
	h, leads, _, _, _, _, _ := assignFixture()
	leads.On("FindByID", mock.Anything, "l-fantasma").Return(nil, entity.ErrLeadNotFound)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-fantasma/assign", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestAssignManualComAgenteExplicito - agent_id no corpo ignora o rodízio
func TestAssignManualComAgenteExplicito(t *testing.T) {
	h, leads, agents, _, picker, assigner, _ := assignFixture()
	lead := assignedLead("l-1")

	leads.On("FindByID", mock.Anything, "l-1").Return(lead, nil)
	agents.On("FindByID", mock.Anything, "ag-ana").Return(&ana, nil)
	assigner.On("Execute", mock.Anything, lead, ana, usecase.OriginManual).Return(nil)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-1/assign", `{"agent_id":"ag-ana"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp AssignResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ana", resp.Agent.Name)
	picker.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

// TestAssignAgenteDesconhecidoEh404
func TestAssignAgenteDesconhecidoEh404(t *testing.T) {
	h, leads, agents, _, _, _, _ := assignFixture()
	leads.On("FindByID", mock.Anything, "l-1").Return(assignedLead("l-1"), nil)
	agents.On("FindByID", mock.Anything, "ag-sumido").Return(nil, nil)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-1/assign", `{"agent_id":"ag-sumido"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestAssignAgenteInativoEh422
func TestAssignAgenteInativoEh422(t *testing.T) {
	h, leads, agents, _, _, assigner, _ := assignFixture()
	leads.On("FindByID", mock.Anything, "l-1").Return(assignedLead("l-1"), nil)
	agents.On("FindByID", mock.Anything, "ag-beto").Return(&entity.Agent{ID: "ag-beto", Name: "Beto", Active: false}, nil)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-1/assign", `{"agent_id":"ag-beto"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assigner.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestAssignSemCorpoUsaORodizio - corpo vazio significa "próximo da vez"
func TestAssignSemCorpoUsaORodizio(t *testing.T) {
	h, leads, _, _, picker, assigner, _ := assignFixture()
	lead := assignedLead("l-1")

	leads.On("FindByID", mock.Anything, "l-1").Return(lead, nil)
	picker.On("Execute", mock.Anything, "graduacao", lead.SiteID).Return(ana, nil)
	assigner.On("Execute", mock.Anything, lead, ana, usecase.OriginManual).Return(nil)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-1/assign", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestAssignRodizioSemCategoriaEh422
func TestAssignRodizioSemCategoriaEh422(t *testing.T) {
	h, leads, _, _, _, _, _ := assignFixture()
	lead := assignedLead("l-1")
	lead.CategoryID = nil
	leads.On("FindByID", mock.Anything, "l-1").Return(lead, nil)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-1/assign", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// TestAssignSemNenhumAgenteAtivoEh409 - rodízio vazio e fallback também
// vazio: não há para quem atribuir
func TestAssignSemNenhumAgenteAtivoEh409(t *testing.T) {
	h, leads, agents, _, picker, _, _ := assignFixture()
	lead := assignedLead("l-1")

	leads.On("FindByID", mock.Anything, "l-1").Return(lead, nil)
	picker.On("Execute", mock.Anything, "graduacao", lead.SiteID).Return(entity.Agent{}, entity.ErrNoEligibleAgents)
	agents.On("FindAnyActive", mock.Anything).Return(nil, entity.ErrNoEligibleAgents)

	rec := doRequest(assignRouter(h), http.MethodPost, "/leads/l-1/assign", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestGetRotationSemHistoricoEh404
func TestGetRotationSemHistoricoEh404(t *testing.T) {
	h, _, _, rotation, _, _, _ := assignFixture()
	rotation.On("Get", mock.Anything, 0, "graduacao").Return(nil, nil)

	rec := doRequest(assignRouter(h), http.MethodGet, "/rotation/graduacao", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestGetRotationComUnidade
func TestGetRotationComUnidade(t *testing.T) {
	h, _, _, rotation, _, _, _ := assignFixture()
	leadID := "l-9"
	rotation.On("Get", mock.Anything, 5, "graduacao").Return(&entity.RotationState{
		SiteID: 5, CategoryID: "graduacao", LastAgentID: "ag-ana", LastLeadID: &leadID,
	}, nil)

	rec := doRequest(assignRouter(h), http.MethodGet, "/rotation/graduacao?site_id=5", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var state entity.RotationState
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	assert.Equal(t, "ag-ana", state.LastAgentID)
}

// TestGetRotationSiteIDInvalidoEh400
func TestGetRotationSiteIDInvalidoEh400(t *testing.T) {
	h, _, _, _, _, _, _ := assignFixture()

	rec := doRequest(assignRouter(h), http.MethodGet, "/rotation/graduacao?site_id=abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestRunBulkDisparaEmSegundoPlano
func TestRunBulkDisparaEmSegundoPlano(t *testing.T) {
	h, _, _, _, _, _, _ := assignFixture()

	rec := doRequest(assignRouter(h), http.MethodPost, "/jobs/bulk-assignment/run", "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

// TestRunBulkComLoteEmExecucaoEh409
func TestRunBulkComLoteEmExecucaoEh409(t *testing.T) {
	h, _, _, _, _, _, bulk := assignFixture()
	bulk.busy = true

	rec := doRequest(assignRouter(h), http.MethodPost, "/jobs/bulk-assignment/run", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}
