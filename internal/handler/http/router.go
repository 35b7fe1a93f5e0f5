package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the ambient settings of the HTTP surface.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(
	tokenAuth *jwtauth.JWTAuth,
	opts RouterOptions,
	monitoringHandler MonitoringHandler,
	checkInHandler CheckInHandler,
	exceptionHandler ExceptionHandler,
	teamSummaryHandler TeamSummaryHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelDebug,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(middleware.AuthRequired)

			r.Route("/daily-monitoring", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionMonitoringView))
				r.Get("/", monitoringHandler.Overview)
				r.Get("/stats", monitoringHandler.Stats)
				r.Get("/checkins", monitoringHandler.ListCheckIns)
				r.Get("/not-checked-in", monitoringHandler.ListNotCheckedIn)
				r.Get("/sudden-changes", monitoringHandler.ListSuddenChanges)
				r.Get("/exemptions", monitoringHandler.ListExemptions)
				r.Get("/member/{id}", monitoringHandler.MemberReport)
			})

			r.With(middleware.RequirePermission(user.PermissionCheckInCreate)).
				Post("/checkins", checkInHandler.Submit)

			r.Route("/exceptions", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionExceptionCreate))
					r.Post("/", exceptionHandler.CreateRequest)
					r.Put("/{id}", exceptionHandler.Update)
					r.Post("/{id}/end-early", exceptionHandler.EndEarly)
					r.Delete("/{id}", exceptionHandler.Cancel)
				})

				// Reviewers only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionExceptionReview))
					r.Post("/exemptions", exceptionHandler.CreateExemption)
					r.Post("/{id}/approve", exceptionHandler.Approve)
					r.Post("/{id}/reject", exceptionHandler.Reject)
				})
			})

			r.Route("/team-summaries", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionSummaryView)).
					Get("/", teamSummaryHandler.History)
				r.With(middleware.RequirePermission(user.PermissionSummaryRebuild)).
					Post("/recalculate", teamSummaryHandler.Recalculate)
			})
		})
	})
	return r
}

// NewRequestLogger builds the JSON slog logger used for request logs.
func NewRequestLogger(app, version, env string, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
