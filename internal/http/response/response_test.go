package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestError_DefaultEnvelopeWhenProblemNotRequested(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-test-1")
	rr := httptest.NewRecorder()

	Error(rr, req, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type: %s", got)
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Meta struct {
			RequestID string `json:"request_id"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Error.Code != "BAD_REQUEST" || body.Error.Message != "invalid payload" {
		t.Fatalf("unexpected error payload: %+v", body.Error)
	}
	if body.Meta.RequestID != "req-test-1" {
		t.Fatalf("request id not propagated: %q", body.Meta.RequestID)
	}
}

func TestError_ProblemJSONWhenRequested(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/flags/ghost", nil)
	req.Header.Set("Accept", "application/problem+json")
	rr := httptest.NewRecorder()

	Error(rr, req, http.StatusNotFound, "NOT_FOUND", "feature flag not found", nil)

	if got := rr.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("unexpected content type: %s", got)
	}
	var body problemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != http.StatusNotFound || body.Title != "Not Found" {
		t.Fatalf("unexpected problem: %+v", body)
	}
	if body.Type != "urn:problem:feature-flags:not-found" {
		t.Fatalf("unexpected problem type: %s", body.Type)
	}
	if body.Instance != "/flags/ghost" {
		t.Fatalf("unexpected instance: %s", body.Instance)
	}
}

func TestError_ProblemJSONRespectsZeroQuality(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Accept", "application/problem+json;q=0, application/json")
	rr := httptest.NewRecorder()

	Error(rr, req, http.StatusConflict, "CONFLICT", "feature flag already exists", nil)

	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected envelope fallback, got %s", got)
	}
}

func TestJSON_SuccessEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	JSON(rr, req, http.StatusCreated, map[string]any{"name": "beta_x"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Data["name"] != "beta_x" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
