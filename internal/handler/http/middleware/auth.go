package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired accepts verified access tokens and stores the caller as a
// user.Actor on the request context.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		userID, _ := claims["user_id"].(string)
		companyID, _ := claims["company_id"].(string)
		roleStr, _ := claims["role"].(string)
		role := user.Role(roleStr)
		if userID == "" || !role.Valid() {
			response.Unauthorized(w, "Invalid token")
			return
		}
		if companyID == "" {
			response.HandleError(w, user.ErrCompanyIDRequired)
			return
		}

		actor := user.Actor{UserID: userID, CompanyID: companyID, Role: role}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	}
	return http.HandlerFunc(hfn)
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller stored by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}
