package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusAccepted, map[string]string{"hello": "world"})

	if rec.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want 202", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Body does not parse: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("Body = %v", body)
	}
}

func TestRespondJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", rec.Body.String())
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, http.StatusNotFound, "not_found", "Incident not found")

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Body does not parse: %v", err)
	}
	if body.Error != "Incident not found" || body.Code != "not_found" {
		t.Errorf("Body = %+v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	var p payload
	if err := DecodeJSON(req, &p); err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}
	if p.Name != "ok" {
		t.Errorf("Name = %q", p.Name)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad json`))
	if err := DecodeJSON(req, &p); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := DecodeJSON(req, &p); err == nil || err.Error() != "request body is empty" {
		t.Errorf("Empty body error = %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": 42}`))
	if err := DecodeJSON(req, &p); err == nil || !strings.Contains(err.Error(), "name") {
		t.Errorf("Type error = %v", err)
	}
}
