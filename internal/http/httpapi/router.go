package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"floorgrid/internal/http/handlers"
	"floorgrid/internal/middleware"
)

func NewRouter(app *handlers.App, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(log),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/allocations", func(r chi.Router) {
		r.Post("/", app.AllocationsCreate)
	})
	r.Post("/v1/deallocations", app.DeallocationsCreate)
	r.Post("/v1/contributions", app.ContributionsCreate)

	r.Route("/v1/batches", func(r chi.Router) {
		r.Post("/", app.BatchesCreate)
		r.Get("/{id}", app.BatchesGet)
		r.Post("/{id}/approve", app.BatchesApprove)
		r.Post("/{id}/reject", app.BatchesReject)
		r.Post("/{id}/deallocate", app.BatchesDeallocate)
	})

	r.Route("/v1/grid", func(r chi.Router) {
		r.Get("/", app.GridStatus)
		r.Get("/stats", app.GridStats)
	})

	return r
}
