package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", response.ErrMalformedBody, err)
	}
	return nil
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryBool(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

// queryInt reads a required positive integer parameter.
func queryInt(r *http.Request, key string, errs *validator.ValidationErrors) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		errs.Add(key, key+" must be a positive integer")
		return 0
	}
	return v
}

func queryDate(r *http.Request, key string, errs *validator.ValidationErrors) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	d, ok := validator.IsValidDate(raw)
	if !ok {
		errs.Add(key, key+" must be in YYYY-MM-DD format")
		return nil
	}
	return &d
}

// callerClaims is only called behind AuthRequired, so a failure means a malformed token.
func callerClaims(w http.ResponseWriter, r *http.Request) (jwt.Claims, bool) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return jwt.Claims{}, false
	}
	return claims, true
}
