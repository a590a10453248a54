package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestJWTAuth(t *testing.T, enabled bool) *JWTAuthMiddleware {
	t.Helper()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	return NewJWTAuthMiddleware(&JWTAuthConfig{
		Enabled:           enabled,
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		JWTSecret:         "test-secret",
		JWTExpiryHours:    1,
		SkipPaths:         []string{"/health", "/webhook/*", "/auth/login"},
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "hunter2" {
		t.Error("Expected hash, not plaintext")
	}
	if !CheckPassword("hunter2", hash) {
		t.Error("Expected correct password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestValidateCredentials(t *testing.T) {
	m := newTestJWTAuth(t, true)

	if !m.ValidateCredentials("admin", "correct horse battery staple") {
		t.Error("Expected valid credentials to pass")
	}
	if m.ValidateCredentials("admin", "wrong") {
		t.Error("Expected wrong password to fail")
	}
	if m.ValidateCredentials("root", "correct horse battery staple") {
		t.Error("Expected wrong username to fail")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestJWTAuth(t, true)

	token, err := m.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("Username = %s, want admin", claims.Username)
	}

	if _, err := m.ValidateToken(token + "tampered"); err == nil {
		t.Error("Expected tampered token to fail validation")
	}
	if _, err := m.ValidateToken("not-a-token"); err == nil {
		t.Error("Expected garbage token to fail validation")
	}
}

func TestWrap_Authentication(t *testing.T) {
	m := newTestJWTAuth(t, true)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/incidents", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("No token: status = %d, want 401", rec.Code)
	}

	// Valid bearer token.
	token, err := m.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/incidents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Valid token: status = %d, want 200", rec.Code)
	}

	// Token via query parameter, the SSE path.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stream?token="+token, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Query token: status = %d, want 200", rec.Code)
	}
}

func TestWrap_SkipPaths(t *testing.T) {
	m := newTestJWTAuth(t, true)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/auth/login", "/webhook/alert/prometheus"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Skip path %s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestWrap_Disabled(t *testing.T) {
	m := newTestJWTAuth(t, false)

	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/incidents", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Disabled auth: status = %d, want 200", rec.Code)
	}
}

func TestGetUserFromContext(t *testing.T) {
	m := newTestJWTAuth(t, true)
	token, _ := m.GenerateToken("admin")

	var user string
	handler := m.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = GetUserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/incidents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if user != "admin" {
		t.Errorf("User from context = %q, want admin", user)
	}
}
