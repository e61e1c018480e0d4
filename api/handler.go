package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	orchestratorx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/agents/orchestrator"
	catalogx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/catalog"
	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

// QueryProcessor is the orchestrator surface the HTTP layer depends on.
type QueryProcessor interface {
	Process(ctx context.Context, text string) (contractx.Envelope, error)
	ExecuteWorkflow(ctx context.Context, wf contractx.Workflow) (*contractx.WorkflowResult, error)
}

type Handler struct {
	orchestrator QueryProcessor
	agents       contractx.Registry
	store        *storex.RecordStore
	catalog      catalogx.Catalog
}

func NewHandler(orch QueryProcessor, agents contractx.Registry, st *storex.RecordStore) (*Handler, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}
	if agents == nil {
		return nil, errors.New("agent registry is required")
	}
	if st == nil {
		return nil, errors.New("record store is required")
	}

	return &Handler{
		orchestrator: orch,
		agents:       agents,
		store:        st,
		catalog:      catalogx.Default(),
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Post("/api/chat", h.Chat)
	r.Post("/api/workflows/execute", h.ExecuteWorkflow)

	r.Post("/api/agents/collect", h.Collect)
	r.Post("/api/agents/report", h.Report)
	r.Post("/api/agents/ask", h.Ask)

	r.Get("/api/market-data", h.ListMarketData)
	r.Get("/api/reports", h.ListReports)
	r.Get("/api/queries", h.ListQueries)
	r.Get("/api/catalog", h.Catalog)

	r.Post("/api/admin/sample-data", h.SeedSampleData)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": h.store.Backend(),
	})
}

type chatRequest struct {
	Text string `json:"text"`
}

// Chat routes one free-text query through the orchestrator. Handled
// agent failures still return 200 with the error inside the envelope.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	env, err := h.orchestrator.Process(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, orchestratorx.ErrInvalidQuery) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, env)
}

func (h *Handler) ExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf contractx.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.orchestrator.ExecuteWorkflow(r.Context(), wf)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	var req contractx.DataCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.agents.DataCollector().Collect(r.Context(), req)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req contractx.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.agents.ReportGenerator().Generate(r.Context(), req)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req contractx.QARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.agents.QA().Answer(r.Context(), req)
	if err != nil {
		respondAgentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) ListMarketData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storex.MarketDataFilter{
		ID:            q.Get("id"),
		Sector:        q.Get("sector"),
		Country:       q.Get("country"),
		DataPoint:     q.Get("data_point"),
		CustomKeyword: q.Get("custom_keyword"),
		Limit:         queryLimit(q.Get("limit")),
	}

	records, err := h.store.MarketData(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storex.ReportFilter{
		ID:               q.Get("id"),
		Sector:           q.Get("sector"),
		Country:          q.Get("country"),
		FinancialProduct: q.Get("financial_product"),
		CustomKeyword:    q.Get("custom_keyword"),
		Limit:            queryLimit(q.Get("limit")),
	}

	records, err := h.store.Reports(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) ListQueries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storex.QueryFilter{
		ID:            q.Get("id"),
		Intent:        q.Get("intent"),
		AgentType:     q.Get("agent_type"),
		CustomKeyword: q.Get("custom_keyword"),
		Limit:         queryLimit(q.Get("limit")),
	}

	records, err := h.store.Queries(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog)
}

func (h *Handler) SeedSampleData(w http.ResponseWriter, r *http.Request) {
	if err := storex.Seed(r.Context(), h.store); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// respondAgentError maps agent failures onto HTTP statuses for the
// direct agent endpoints. The chat endpoint never reaches this for
// handled failures because those ride inside the envelope.
func respondAgentError(w http.ResponseWriter, err error) {
	var malformed *contractx.MalformedOutputError
	if errors.As(err, &malformed) {
		respondJSON(w, http.StatusBadGateway, contractx.ErrorResult{
			Error:       malformed.Error(),
			RawResponse: malformed.Raw,
		})
		return
	}

	switch {
	case errors.Is(err, contractx.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contractx.ErrNoData):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contractx.ErrModelInvoke):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to encode response body")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, contractx.ErrorResult{Error: msg})
}
