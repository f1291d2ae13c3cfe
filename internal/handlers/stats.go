package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fiberagent/gateway/internal/errs"
	"github.com/fiberagent/gateway/internal/identity"
	"github.com/fiberagent/gateway/internal/middleware"
	"github.com/fiberagent/gateway/internal/ratelimit"
	"github.com/fiberagent/gateway/internal/store"
)

// AgentStats handles GET /api/v1/agents/{id}/stats. A bearer token is
// optional, but a present token must belong to the requested agent.
func (h *Handler) AgentStats(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("id")
	if agentID == "" {
		errs.Write(w, errs.MissingFields("agent_id"))
		return
	}

	check := h.Limiter.Check(agentID)
	ratelimit.SetHeaders(w.Header(), check)
	if !check.Allowed {
		errs.Write(w, errs.New(errs.CodeRateLimited, "You have exceeded the stats request limit").
			WithDetail("retry_after", check.RetryAfter))
		return
	}

	tokenAgent := middleware.TokenAgentFromCtx(r.Context())
	if tokenAgent != "" && tokenAgent != agentID {
		errs.Write(w, errs.New(errs.CodeForbidden, "Token is for a different agent").
			WithDetail("requested_agent", agentID).
			WithDetail("token_agent", tokenAgent))
		return
	}

	stats, err := h.Identity.Stats(r.Context(), agentID)
	if err != nil {
		if errors.Is(err, store.ErrAgentNotFound) {
			// Unknown agents get zeroed stats rather than a 404 so probing
			// a freshly restarted gateway stays cheap for clients.
			stats = &identity.Stats{AgentID: agentID, AgentName: agentID, RegisteredAt: time.Now().UTC()}
		} else {
			h.Logger.Error("stats lookup failed", "agent_id", agentID, "error", err)
			errs.Write(w, errs.New(errs.CodeInternal, err.Error()))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

// Leaderboard handles GET /api/v1/stats/leaderboard?limit=&offset=.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	check := h.Limiter.Check(anonymousBucket)
	ratelimit.SetHeaders(w.Header(), check)
	if !check.Allowed {
		errs.Write(w, errs.New(errs.CodeRateLimited, "Leaderboard limit exceeded").
			WithDetail("retry_after", check.RetryAfter))
		return
	}

	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	entries, total, err := h.Identity.Leaderboard(r.Context(), limit, offset)
	if err != nil {
		h.Logger.Error("leaderboard failed", "error", err)
		errs.Write(w, errs.New(errs.CodeInternal, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"leaderboard": entries,
		"pagination": map[string]int{
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// PlatformStats handles GET /api/v1/stats/platform.
func (h *Handler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	check := h.Limiter.Check(anonymousBucket)
	ratelimit.SetHeaders(w.Header(), check)
	if !check.Allowed {
		errs.Write(w, errs.New(errs.CodeRateLimited, "Platform stats limit exceeded").
			WithDetail("retry_after", check.RetryAfter))
		return
	}

	stats, err := h.Identity.PlatformStats(r.Context())
	if err != nil {
		h.Logger.Error("platform stats failed", "error", err)
		errs.Write(w, errs.New(errs.CodeInternal, err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
