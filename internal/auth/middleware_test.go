package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newValidator(t *testing.T) *StaticAPIKeyValidator {
	t.Helper()
	validator, err := NewStaticAPIKeyValidator([]string{
		"coach-key:coach-anna:assistant_user",
		"admin-key:dir-sports:assistant_user|assistant_admin",
	})
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	return validator
}

func TestNewStaticAPIKeyValidatorRejectsMalformedEntries(t *testing.T) {
	cases := []string{
		"just-a-key",
		"key:name",
		"key::assistant_user",
		"key:name:",
	}
	for _, entry := range cases {
		if _, err := NewStaticAPIKeyValidator([]string{entry}); err == nil {
			t.Fatalf("NewStaticAPIKeyValidator(%q) should fail", entry)
		}
	}
}

func TestValidateResolvesRoles(t *testing.T) {
	validator := newValidator(t)

	identity, ok := validator.Validate("admin-key")
	if !ok {
		t.Fatal("expected admin-key to validate")
	}
	if identity.Name != "dir-sports" {
		t.Fatalf("Name = %q", identity.Name)
	}
	if !identity.HasRole("assistant_admin") || !identity.HasRole("assistant_user") {
		t.Fatalf("Roles = %v", identity.Roles)
	}
	if identity.HasRole("other") {
		t.Fatal("HasRole(other) should be false")
	}

	if _, ok := validator.Validate("unknown"); ok {
		t.Fatal("unknown key should not validate")
	}
}

func TestMiddlewareRequiredRejectsMissingKey(t *testing.T) {
	handler := Middleware(newValidator(t), true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareAcceptsHeaderAndBearer(t *testing.T) {
	var seen Identity
	handler := Middleware(newValidator(t), true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	req.Header.Set("X-API-Key", "coach-key")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen.Name != "coach-anna" {
		t.Fatalf("X-API-Key identity = %q", seen.Name)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	req.Header.Set("Authorization", "Bearer admin-key")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen.Name != "dir-sports" {
		t.Fatalf("Bearer identity = %q", seen.Name)
	}
}

func TestMiddlewareOptionalPassesAnonymous(t *testing.T) {
	reached := false
	handler := Middleware(newValidator(t), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if _, ok := IdentityFromContext(r.Context()); ok {
			t.Fatal("anonymous request should carry no identity")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/ask", nil))
	if !reached {
		t.Fatal("handler should be reached without credentials")
	}
}

func TestMiddlewareRejectsInvalidKeyEvenWhenOptional(t *testing.T) {
	handler := Middleware(newValidator(t), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	req.Header.Set("X-API-Key", "bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
