package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tripmate/tripauth"
	"github.com/tripmate/tripauth/jwt"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the validated access-token claims injected by
// [Guard], or false when the request never passed a guard.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// token. Validated claims ride the request context for downstream handlers.
func Guard(engine *tripauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				reject(w, http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(w, http.StatusUnauthorized)
				return
			}

			claims, err := engine.TokenManager().Parse(token)
			if err != nil {
				reject(w, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is [Guard] plus a role-membership check. A valid token without
// the role is rejected with 403 rather than 401.
func RequireRole(engine *tripauth.Engine, role string) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !hasRole(claims.Roles, role) {
				reject(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func reject(w http.ResponseWriter, status int) {
	message := "unauthorized"
	if status == http.StatusForbidden {
		message = "forbidden"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(tripauth.Response{
		Success: false,
		Status:  status,
		Message: message,
		Errors:  []string{message},
	})
}
