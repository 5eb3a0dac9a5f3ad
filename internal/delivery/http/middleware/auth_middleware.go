package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/domain/repository"
	"clinic-calendar/pkg/jwt"
	"clinic-calendar/pkg/response"
)

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	sessionRepo repository.SessionRepository
}

func NewAuthMiddleware(jwtService *jwt.JWTService, sessionRepo repository.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		sessionRepo: sessionRepo,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Validate JWT token
		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		// Check if it's an access token
		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		// The session holds the backend tokens; once it is gone the gateway token is dead too.
		exists, err := m.sessionRepo.Exists(r.Context(), claims.SessionID)
		if err != nil {
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if !exists {
			response.Unauthorized(w, "Session has ended")
			return
		}

		sub := claims.Subject()
		ctx := entity.WithPrincipal(r.Context(), entity.Principal{
			SessionID: sub.SessionID,
			UserID:    sub.UserID,
			Role:      sub.Role,
			DoctorID:  sub.DoctorID,
			PatientID: sub.PatientID,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set headers on a
// websocket upgrade, so the access_token query parameter is accepted as well.
func bearerToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token, true
	}
	return "", false
}

// GetPrincipal extracts the authenticated caller from context
func GetPrincipal(ctx context.Context) (entity.Principal, bool) {
	return entity.PrincipalFromContext(ctx)
}

// GetSessionIDFromContext extracts the gateway session ID from context
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	p, ok := entity.PrincipalFromContext(ctx)
	if !ok || p.SessionID == "" {
		return "", false
	}
	return p.SessionID, true
}

// GetRoleFromContext extracts the backend role from context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	p, ok := entity.PrincipalFromContext(ctx)
	if !ok || p.Role == "" {
		return "", false
	}
	return p.Role, true
}
