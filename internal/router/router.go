package router

import (
	"net/http"

	"github.com/fiberagent/gateway/internal/handlers"
	"github.com/fiberagent/gateway/internal/identity"
	"github.com/fiberagent/gateway/internal/middleware"
)

// New returns the API handler. Bearer resolution wraps the routes that
// accept optional tokens; the register endpoint stays open since the
// credential does not exist yet.
func New(h *handlers.Handler, idSvc identity.Service) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.BearerAuth(idSvc)

	mux.HandleFunc("POST /api/v1/agents/register", h.RegisterAgent)
	mux.Handle("GET /api/v1/agents/search", auth(http.HandlerFunc(h.SearchProducts)))
	mux.Handle("POST /api/v1/agents/search", auth(http.HandlerFunc(h.SearchProducts)))
	mux.HandleFunc("GET /api/v1/agents/{id}", h.GetAgent)
	mux.Handle("GET /api/v1/agents/{id}/stats", auth(http.HandlerFunc(h.AgentStats)))

	mux.HandleFunc("GET /api/v1/stats/leaderboard", h.Leaderboard)
	mux.HandleFunc("GET /api/v1/stats/platform", h.PlatformStats)

	mux.HandleFunc("GET /api/v1/tools", h.ListTools)
	// Tool calls are not wrapped: the dispatcher validates tokens itself
	// and reports failures inside its envelope.
	mux.HandleFunc("POST /api/v1/tools/call", h.CallTool)

	return mux
}
