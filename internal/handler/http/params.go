package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/validator"
)

// queryString returns the query parameter, or nil when it is absent or empty.
func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, validator.ValidationErrors{{
			Field:   key,
			Message: key + " must be a number",
		}}
	}
	return n, nil
}
