package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/v3ai2026/vision/internal/model"
	"github.com/v3ai2026/vision/internal/token"
)

type tokenValidator interface {
	ValidateToken(tokenString string) (*token.Claims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	validator tokenValidator
}

func NewAuthMiddleware(validator tokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth verifies the bearer token on every request and stores the
// claims in the request context. The "bearer" prefix is matched
// case-insensitively.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeUnauthorized(w, "missing or invalid authorization header")
			return
		}

		tokenString := strings.TrimSpace(header[len("bearer "):])
		claims, err := m.validator.ValidateToken(tokenString)
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*token.Claims)
	return claims, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Code:    http.StatusUnauthorized,
		Success: false,
		Msg:     message,
		Data:    nil,
	})
}
