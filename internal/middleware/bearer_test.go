package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fiberagent/gateway/internal/identity"
	"github.com/fiberagent/gateway/internal/store"
)

func setup(t *testing.T) (identity.Service, string) {
	t.Helper()
	svc := identity.NewService(store.NewMemory())
	if _, err := svc.Register(context.Background(), "agent_a", "", "0xabc", ""); err != nil {
		t.Fatal(err)
	}
	tok, err := svc.IssueToken(context.Background(), "agent_a")
	if err != nil {
		t.Fatal(err)
	}
	return svc, tok.Token
}

func TestBearerAuthNoHeaderPassesThrough(t *testing.T) {
	svc, _ := setup(t)

	called := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		if got := TokenAgentFromCtx(r.Context()); got != "" {
			t.Errorf("token agent = %q, want empty without a header", got)
		}
	})

	rec := httptest.NewRecorder()
	BearerAuth(svc)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("request without a token must pass through")
	}
}

func TestBearerAuthValidTokenSetsContext(t *testing.T) {
	svc, token := setup(t)

	var gotAgent string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotAgent = TokenAgentFromCtx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	BearerAuth(svc)(next).ServeHTTP(httptest.NewRecorder(), req)

	if gotAgent != "agent_a" {
		t.Errorf("token agent = %q, want agent_a", gotAgent)
	}
}

func TestBearerAuthInvalidTokenRejected(t *testing.T) {
	svc, _ := setup(t)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run for an invalid token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer fbr_forged")
	rec := httptest.NewRecorder()
	BearerAuth(svc)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestBearerAuthSchemeIsCaseInsensitive(t *testing.T) {
	svc, token := setup(t)

	var gotAgent string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotAgent = TokenAgentFromCtx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	BearerAuth(svc)(next).ServeHTTP(httptest.NewRecorder(), req)

	if gotAgent != "agent_a" {
		t.Errorf("token agent = %q, want agent_a", gotAgent)
	}
}

func TestBearerAuthNonBearerSchemeIgnored(t *testing.T) {
	svc, _ := setup(t)

	called := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	BearerAuth(svc)(next).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("non-bearer schemes are not this middleware's business")
	}
}
