// Package handlers implements the plain request/response API in front of
// the identity service and catalog resolver.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fiberagent/gateway/internal/catalog"
	"github.com/fiberagent/gateway/internal/errs"
	"github.com/fiberagent/gateway/internal/identity"
	"github.com/fiberagent/gateway/internal/middleware"
	"github.com/fiberagent/gateway/internal/models"
	"github.com/fiberagent/gateway/internal/ratelimit"
	"github.com/fiberagent/gateway/internal/store"
	"github.com/fiberagent/gateway/internal/tools"
)

// anonymousBucket rate-limits unauthenticated endpoints together.
const anonymousBucket = "anonymous"

// Handler serves the REST agent endpoints.
type Handler struct {
	Identity   identity.Service
	Catalog    tools.Resolver
	Limiter    *ratelimit.Limiter
	Dispatcher *tools.Dispatcher
	Logger     *slog.Logger
}

// NewHandler returns a Handler; a nil logger falls back to slog.Default.
func NewHandler(idSvc identity.Service, resolver tools.Resolver, limiter *ratelimit.Limiter, dispatcher *tools.Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Identity:   idSvc,
		Catalog:    resolver,
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
}

type registerRequest struct {
	AgentID          string `json:"agent_id"`
	AgentName        string `json:"agent_name"`
	WalletAddress    string `json:"wallet_address"`
	CryptoPreference string `json:"crypto_preference"`
}

// RegisterAgent handles POST /api/v1/agents/register.
func (h *Handler) RegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errs.Write(w, errs.New(errs.CodeInvalidRequest, "Invalid JSON body"))
		return
	}

	var missing []string
	if req.AgentID == "" {
		missing = append(missing, "agent_id")
	}
	if req.WalletAddress == "" {
		missing = append(missing, "wallet_address")
	}
	if len(missing) > 0 {
		errs.Write(w, errs.MissingFields(missing...))
		return
	}

	check := h.Limiter.Check(req.AgentID)
	ratelimit.SetHeaders(w.Header(), check)
	if !check.Allowed {
		errs.Write(w, errs.New(errs.CodeRateLimited, "Registration limit exceeded").
			WithDetail("retry_after", check.RetryAfter))
		return
	}

	agent, err := h.Identity.Register(r.Context(), req.AgentID, req.AgentName, req.WalletAddress, req.CryptoPreference)
	if err != nil {
		if errors.Is(err, store.ErrAgentExists) {
			e := errs.Newf(errs.CodeConflict, "Agent %q already registered", req.AgentID).
				WithDetail("error_code", "AGENT_ALREADY_EXISTS").
				WithDetail("existing_agent_id", req.AgentID)
			if existing, getErr := h.Identity.Get(r.Context(), req.AgentID); getErr == nil {
				e = e.WithDetail("registered_at", existing.RegisteredAt)
			}
			errs.Write(w, e)
			return
		}
		h.Logger.Error("register agent failed", "agent_id", req.AgentID, "error", err)
		errs.Write(w, errs.New(errs.CodeInternal, err.Error()))
		return
	}

	token, err := h.Identity.IssueToken(r.Context(), agent.AgentID)
	if err != nil {
		h.Logger.Error("issue token failed", "agent_id", agent.AgentID, "error", err)
		errs.Write(w, errs.New(errs.CodeInternal, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Agent registered successfully",
		"agent":      agent,
		"auth_token": token.Token,
		"token_type": "Bearer",
		"created_at": agent.RegisteredAt,
		"note":       `Use auth_token in the Authorization header for subsequent calls: "Authorization: Bearer <token>"`,
	})
}

// GetAgent handles GET /api/v1/agents/{id}. Public lookup; the bearer
// token is never exposed here.
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("id")
	if agentID == "" {
		errs.Write(w, errs.MissingFields("agent_id"))
		return
	}

	agent, err := h.Identity.Get(r.Context(), agentID)
	if err != nil {
		if errors.Is(err, store.ErrAgentNotFound) {
			errs.Write(w, errs.Newf(errs.CodeNotFound, "Agent %q not found", agentID).
				WithDetail("agent_id", agentID).
				WithDetail("hint", "Register first using POST /api/v1/agents/register"))
			return
		}
		h.Logger.Error("get agent failed", "agent_id", agentID, "error", err)
		errs.Write(w, errs.New(errs.CodeInternal, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"agent":   agent,
	})
}

type searchResponse struct {
	Success      bool             `json:"success"`
	Query        string           `json:"query"`
	AgentID      string           `json:"agent_id"`
	TotalResults int              `json:"total_results"`
	Results      []models.Product `json:"results"`
	Source       catalog.Source   `json:"source"`
	Timestamp    time.Time        `json:"timestamp"`
}

// SearchProducts handles GET and POST /api/v1/agents/search. A bearer
// token, when present, must be valid (middleware) and must match any
// explicit agent_id.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var keywords, agentID string
	var size int

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		keywords = q.Get("keywords")
		agentID = q.Get("agent_id")
		size, _ = strconv.Atoi(q.Get("size"))
	case http.MethodPost:
		var body struct {
			Query    string `json:"query"`
			Keywords string `json:"keywords"`
			AgentID  string `json:"agent_id"`
			Size     int    `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errs.Write(w, errs.New(errs.CodeInvalidRequest, "Invalid JSON body"))
			return
		}
		keywords = body.Keywords
		if keywords == "" {
			keywords = body.Query
		}
		agentID = body.AgentID
		size = body.Size
	}

	tokenAgent := middleware.TokenAgentFromCtx(r.Context())
	if tokenAgent != "" {
		if agentID != "" && agentID != tokenAgent {
			errs.Write(w, errs.New(errs.CodeForbidden, "Token is for a different agent").
				WithDetail("requested_agent", agentID).
				WithDetail("token_agent", tokenAgent))
			return
		}
		agentID = tokenAgent
	}

	var missing []string
	if keywords == "" {
		missing = append(missing, "keywords")
	}
	if agentID == "" {
		missing = append(missing, "agent_id")
	}
	if len(missing) > 0 {
		errs.Write(w, errs.MissingFields(missing...))
		return
	}

	check := h.Limiter.Check(agentID)
	ratelimit.SetHeaders(w.Header(), check)
	if !check.Allowed {
		errs.Write(w, errs.New(errs.CodeRateLimited, "").
			WithDetail("retry_after", check.RetryAfter).
			WithDetail("limit_type", string(check.LimitType)))
		return
	}

	products, source := h.Catalog.Resolve(r.Context(), keywords, agentID, size)

	if err := h.Identity.RecordSearch(r.Context(), agentID, keywords, len(products)); err != nil {
		h.Logger.Warn("record search failed", "agent_id", agentID, "error", err)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success:      true,
		Query:        keywords,
		AgentID:      agentID,
		TotalResults: len(products),
		Results:      products,
		Source:       source,
		Timestamp:    time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
