package errs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusAndRetryableByCode(t *testing.T) {
	cases := []struct {
		code      Code
		status    int
		retryable bool
	}{
		{CodeInvalidRequest, http.StatusBadRequest, false},
		{CodeMissingRequiredField, http.StatusBadRequest, false},
		{CodeUnauthorized, http.StatusUnauthorized, false},
		{CodeForbidden, http.StatusForbidden, false},
		{CodeNotFound, http.StatusNotFound, false},
		{CodeConflict, http.StatusConflict, false},
		{CodeRateLimited, http.StatusTooManyRequests, true},
		{CodeUpstreamUnavailable, http.StatusServiceUnavailable, true},
		{CodeInternal, http.StatusInternalServerError, true},
	}
	for _, tc := range cases {
		e := New(tc.code, "")
		if e.Status() != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.code, e.Status(), tc.status)
		}
		if Retryable(tc.code) != tc.retryable {
			t.Errorf("%s: retryable = %v, want %v", tc.code, Retryable(tc.code), tc.retryable)
		}
		if e.Message == "" {
			t.Errorf("%s: empty message must fall back to the code default", tc.code)
		}
	}
}

func TestUnknownCodeDefaults(t *testing.T) {
	e := New(Code("MYSTERY"), "boom")
	if e.Status() != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for unknown codes", e.Status())
	}
	if Retryable(e.Code) {
		t.Error("unknown codes must not be retryable")
	}
}

func TestWriteSerializesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Newf(CodeConflict, "Agent %q already registered", "agent_a").
		WithDetail("existing_agent_id", "agent_a"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["success"] != false || body["error"] != "CONFLICT" {
		t.Errorf("body = %v", body)
	}
	if body["existing_agent_id"] != "agent_a" {
		t.Error("details must be merged into the top-level body")
	}
	if body["retryable"] != false {
		t.Errorf("retryable = %v", body["retryable"])
	}
}

func TestWriteRateLimitedSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, New(CodeRateLimited, "").WithDetail("retry_after", 42))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Errorf("Retry-After = %q, want 42", got)
	}
}

func TestMissingFields(t *testing.T) {
	e := MissingFields("agent_id", "wallet_address")
	if e.Code != CodeMissingRequiredField {
		t.Errorf("code = %q", e.Code)
	}
	if e.Message != "Missing required fields: agent_id, wallet_address" {
		t.Errorf("message = %q", e.Message)
	}
}
