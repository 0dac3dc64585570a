package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prastiyo12/userhub_api/internal/telemetry"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type App struct {
	Health *HealthHandler
	Users  *UsersHandler
	Actors ActorResolver
}

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.ChiTraceMiddleware("userhub-api"))
	r.Use(telemetry.ChiMetricsMiddleware)
	r.Use(telemetry.ChiLogMiddleware("userhub-api"))

	r.Get("/health", app.Health.Get)
	r.Get("/docs/*", httpSwagger.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", app.Users.Create)

			r.Group(func(r chi.Router) {
				r.Use(ActorMiddleware(app.Actors))
				r.Get("/", app.Users.List)
			})
		})
	})
	return r
}
