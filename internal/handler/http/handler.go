package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

// actorFrom returns the authenticated caller or writes 401.
func actorFrom(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Actor{}, false
	}
	return actor, true
}

// queryInt parses an optional integer query parameter, appending a
// validation error when it is malformed.
func queryInt(r *http.Request, name string, errs *validator.ValidationErrors) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, validator.ValidationError{
			Field:   name,
			Message: name + " must be a number",
		})
		return nil
	}
	return &n
}

func queryString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}
