package middleware

import (
	"context"
	"net/http"
	"strings"

	"prediction-league/services"

	"github.com/unrolled/render"
)

// ClaimsContextKey is the key used to store token claims in request context
type ClaimsContextKey string

const ClaimsKey ClaimsContextKey = "claims"

// TokenValidator checks a bearer token
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.JWTClaims, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	tokens TokenValidator
	render *render.Render
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokens TokenValidator, r *render.Render) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		render: r,
	}
}

// RequireAdmin rejects requests without a valid admin token
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			m.render.JSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		if !claims.IsAdmin() {
			m.render.JSON(w, http.StatusForbidden, map[string]string{"error": "Admin token required"})
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth adds claims to the context when a valid token is present
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := m.claimsFromRequest(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

// claimsFromRequest reads the token from the Authorization header or the
// auth_token cookie
func (m *AuthMiddleware) claimsFromRequest(r *http.Request) (*services.JWTClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return m.tokens.ValidateToken(strings.TrimSpace(parts[1]))
		}
	}

	cookie, err := r.Cookie("auth_token")
	if err == nil && cookie.Value != "" {
		return m.tokens.ValidateToken(cookie.Value)
	}

	return nil, http.ErrNoCookie
}

// GetClaimsFromContext retrieves the token claims from request context
func GetClaimsFromContext(r *http.Request) *services.JWTClaims {
	if claims, ok := r.Context().Value(ClaimsKey).(*services.JWTClaims); ok {
		return claims
	}
	return nil
}

// IsAdmin checks if the request carries an admin token
func IsAdmin(r *http.Request) bool {
	return GetClaimsFromContext(r).IsAdmin()
}
