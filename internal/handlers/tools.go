package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fiberagent/gateway/internal/errs"
	"github.com/fiberagent/gateway/internal/tools"
)

// ListTools handles GET /api/v1/tools.
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": h.Dispatcher.List(),
	})
}

// CallTool handles POST /api/v1/tools/call. The Authorization header, when
// present, is forwarded to the dispatcher as the identity hint; the
// dispatcher owns validation and rate limiting.
func (h *Handler) CallTool(w http.ResponseWriter, r *http.Request) {
	var req tools.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errs.Write(w, errs.New(errs.CodeInvalidRequest, "Invalid JSON body"))
		return
	}
	if req.Tool == "" {
		errs.Write(w, errs.MissingFields("tool"))
		return
	}
	if authz := r.Header.Get("Authorization"); authz != "" && req.AuthToken == "" {
		req.AuthToken = authz
	}

	resp := h.Dispatcher.Call(r.Context(), req)

	status := http.StatusOK
	if resp.Error != nil {
		status = errs.New(resp.Error.Code, "").Status()
	}
	writeJSON(w, status, resp)
}
