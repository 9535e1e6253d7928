package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(svc jwt.Service, guard func(http.Handler) http.Handler) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserIDFromContext(r.Context())))
	})
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(guard(final)))
}

func call(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("secret", "1h")
	h := protected(svc, RequireRole(jwt.RoleViewer))

	assert.Equal(t, http.StatusUnauthorized, call(h, "").Code)

	sse, _, err := svc.GenerateSSEToken("u1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(h, sse).Code)

	access, _, err := svc.GenerateAccessToken("u1", jwt.RoleViewer)
	require.NoError(t, err)
	w := call(h, access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	svc := jwt.NewJWTService("secret", "1h")
	writer := protected(svc, RequireWriter)
	admin := protected(svc, RequireAdmin)

	tokens := map[jwt.Role]string{}
	for _, role := range []jwt.Role{jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer} {
		tok, _, err := svc.GenerateAccessToken("u-"+string(role), role)
		require.NoError(t, err)
		tokens[role] = tok
	}

	assert.Equal(t, http.StatusOK, call(writer, tokens[jwt.RoleOperator]).Code)
	assert.Equal(t, http.StatusOK, call(writer, tokens[jwt.RoleAdmin]).Code)
	assert.Equal(t, http.StatusForbidden, call(writer, tokens[jwt.RoleViewer]).Code)
	assert.Equal(t, http.StatusForbidden, call(admin, tokens[jwt.RoleOperator]).Code)
	assert.Equal(t, http.StatusOK, call(admin, tokens[jwt.RoleAdmin]).Code)
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
