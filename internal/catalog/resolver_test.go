package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveLiveSuccess(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[
			{"id":"live1","title":"Nike Air Max","price":150,"cashback_rate":8},
			{"id":"live1","title":"Nike Air Max duplicate"},
			{"id":"live2","title":"Nike Pegasus"}
		]}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second, discardLogger())
	products, source := r.Resolve(context.Background(), "nike", "agent_a", 10)

	if source != SourceLive {
		t.Fatalf("source = %q, want live", source)
	}
	if len(products) != 2 {
		t.Fatalf("len = %d, want 2 after dedupe", len(products))
	}
	if products[0].ID != "live1" || products[1].ID != "live2" {
		t.Errorf("ids = %q, %q", products[0].ID, products[1].ID)
	}

	q, _ := http.NewRequest(http.MethodGet, "/?"+gotQuery, nil)
	params := q.URL.Query()
	if params.Get("keywords") != "nike" || params.Get("agent_id") != "agent_a" || params.Get("size") != "10" {
		t.Errorf("upstream query = %q", gotQuery)
	}
}

func TestResolveLiveTruncatesToMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products":[
			{"id":"a","title":"A"},{"id":"b","title":"B"},{"id":"c","title":"C"}
		]}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second, discardLogger())
	products, _ := r.Resolve(context.Background(), "anything", "agent_a", 2)
	if len(products) != 2 {
		t.Errorf("len = %d, want 2", len(products))
	}
}

func TestResolveFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second, discardLogger())
	products, source := r.Resolve(context.Background(), "nike", "agent_a", 10)

	if source != SourceFallback {
		t.Fatalf("source = %q, want fallback", source)
	}
	if len(products) == 0 {
		t.Fatal("fallback catalog should have nike results")
	}
}

func TestResolveFallsBackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second, discardLogger())
	_, source := r.Resolve(context.Background(), "nike", "agent_a", 10)
	if source != SourceFallback {
		t.Errorf("source = %q, want fallback", source)
	}
}

func TestResolveFallsBackOnEmptyLiveResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, time.Second, discardLogger())
	_, source := r.Resolve(context.Background(), "nike", "agent_a", 10)
	if source != SourceFallback {
		t.Errorf("source = %q, want fallback on empty live set", source)
	}
}

func TestResolveUnreachableHost(t *testing.T) {
	// Reserved TEST-NET address; connection fails fast.
	r := NewResolver("http://192.0.2.1:9", 200*time.Millisecond, discardLogger())
	products, source := r.Resolve(context.Background(), "nike", "agent_a", 10)
	if source != SourceFallback {
		t.Fatalf("source = %q, want fallback", source)
	}
	if len(products) == 0 {
		t.Fatal("expected fallback results")
	}
}

func TestResolveEmptySource(t *testing.T) {
	r := NewResolver("", 0, discardLogger())
	products, source := r.Resolve(context.Background(), "quantum flux capacitor", "agent_a", 10)
	if source != SourceEmpty {
		t.Fatalf("source = %q, want empty", source)
	}
	if products != nil {
		t.Errorf("products = %v, want nil", products)
	}
}

func TestResolveNoBaseURLUsesFallbackOnly(t *testing.T) {
	r := NewResolver("", 0, discardLogger())
	products, source := r.Resolve(context.Background(), "nike", "agent_a", 3)
	if source != SourceFallback {
		t.Fatalf("source = %q, want fallback", source)
	}
	if len(products) > 3 {
		t.Errorf("len = %d, want at most 3", len(products))
	}
}
