package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/jwt"
)

var (
	// RequireWriter guards routes that change punches, schedules or records.
	RequireWriter = RequireRole(jwt.RoleOperator)
	RequireAdmin  = RequireRole(jwt.RoleAdmin)
)

// RequireRole rejects callers whose role ranks below required. It must run after
// AuthRequired.
func RequireRole(required jwt.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Forbidden(w, fmt.Sprintf("%s access required", required))
				return
			}
			if !claims.Role.AtLeast(required) {
				response.Forbidden(w, fmt.Sprintf("%s access required, but user role is '%s'", required, claims.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
