package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fiberagent/gateway/internal/errs"
	"github.com/fiberagent/gateway/internal/identity"
)

type contextKey string

const ctxTokenAgentKey contextKey = "token_agent"

// BearerAuth resolves an optional Authorization header. Tokens are
// optional-but-verified: a request without one passes through untouched,
// but a present token must validate or the request is rejected. On
// success the token's owning agent_id is placed in the request context.
func BearerAuth(idSvc identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			agentID, err := idSvc.ValidateToken(r.Context(), raw)
			if err != nil {
				errs.Write(w, errs.New(errs.CodeUnauthorized, "Invalid or expired Bearer token"))
				return
			}
			ctx := context.WithValue(r.Context(), ctxTokenAgentKey, agentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenAgentFromCtx returns the agent_id the validated bearer token
// belongs to, or "" when the request carried no token.
func TokenAgentFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxTokenAgentKey).(string)
	return id
}

// WithTokenAgent returns a context carrying the given token owner.
func WithTokenAgent(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, ctxTokenAgentKey, agentID)
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
