package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/ponto-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type claimsKey struct{}

// AuthRequired runs after jwtauth.Verifier. It accepts only access tokens
// and stores their typed claims in the request context.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, raw, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		claims, err := jwt.ClaimsFromMap(raw)
		if err != nil || claims.Type != jwt.TokenTypeAccess {
			response.Unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.Claims)
	return claims, ok
}

// UserIDFromContext returns the user_id of the authenticated caller, or "".
func UserIDFromContext(ctx context.Context) string {
	claims, _ := ClaimsFromContext(ctx)
	return claims.UserID
}
