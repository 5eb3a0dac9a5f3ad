package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-calendar/config"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/pkg/jwt"
)

type stubSessions struct {
	live map[string]bool
}

func (s *stubSessions) Save(ctx context.Context, session *entity.Session) error { return nil }

func (s *stubSessions) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	return nil, nil
}

func (s *stubSessions) UpdateTokens(ctx context.Context, id string, tokens entity.TokenPair) error {
	return nil
}

func (s *stubSessions) Delete(ctx context.Context, id string) error { return nil }

func (s *stubSessions) Exists(ctx context.Context, id string) (bool, error) {
	return s.live[id], nil
}

func newTestJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "test", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

func principalEcho(t *testing.T, got *entity.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipal(r.Context())
		if !ok {
			t.Error("principal missing from context")
		}
		*got = p
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	jwtService := newTestJWT()
	sessions := &stubSessions{live: map[string]bool{"s1": true}}
	mw := NewAuthMiddleware(jwtService, sessions)

	sub := jwt.Subject{SessionID: "s1", UserID: "42", Role: entity.RoleDoctor, DoctorID: "d1"}
	access, _, _ := jwtService.GenerateAccessToken(sub)
	refresh, _, _ := jwtService.GenerateRefreshToken(sub)
	orphan, _, _ := jwtService.GenerateAccessToken(jwt.Subject{SessionID: "gone", Role: entity.RoleDoctor})

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"header token", "Bearer " + access, "", http.StatusNoContent},
		{"websocket query token", "", "?access_token=" + access, http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed header", "Token " + access, "", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, "", http.StatusUnauthorized},
		{"ended session", "Bearer " + orphan, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got entity.Principal
			req := httptest.NewRequest(http.MethodGet, "/calendar/state"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(principalEcho(t, &got)).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusNoContent && (got.DoctorID != "d1" || got.SessionID != "s1") {
				t.Errorf("unexpected principal %+v", got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		role   string
		guard  func(http.Handler) http.Handler
		status int
	}{
		{entity.RoleReceptionist, RequireFrontDesk, http.StatusNoContent},
		{entity.RoleAdmin, RequireFrontDesk, http.StatusNoContent},
		{entity.RolePatient, RequireFrontDesk, http.StatusForbidden},
		{entity.RoleDoctor, RequireDoctor, http.StatusNoContent},
		{entity.RoleReceptionist, RequireAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(entity.WithPrincipal(req.Context(), entity.Principal{SessionID: "s", Role: tt.role}))
		rec := httptest.NewRecorder()
		tt.guard(ok).ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("role %s: expected %d, got %d", tt.role, tt.status, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	RequirePatient(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no principal: expected 401, got %d", rec.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	mw := NewCORSMiddleware([]string{"https://clinic.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/calendar/view", nil)
	req.Header.Set("Origin", "https://clinic.example")
	rec := httptest.NewRecorder()
	mw.Handle(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("preflight must be answered, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://clinic.example" {
		t.Errorf("unexpected allow-origin %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/calendar/state", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	mw.Handle(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("foreign origin must pass through without allow-origin, got %d %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	rec = httptest.NewRecorder()
	NewCORSMiddleware(nil).Handle(next).ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("no configured origins allows any")
	}
}
