// Package httpapi exposes the ledger service over HTTP as a JSON API and
// translates ledger error kinds into stable status codes.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitward/splitward/internal/auth"
	"github.com/splitward/splitward/internal/middleware"
	"github.com/splitward/splitward/internal/service"
)

// NewRouter builds the full route tree: health and metrics unauthenticated,
// everything under /api/v1 behind the bearer-token middleware.
func NewRouter(ledgerSvc *service.Ledger, jwtManager *auth.JWTManager) http.Handler {
	h := NewHandler(ledgerSvc)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequireAuth(jwtManager))

		api.Route("/groups", func(g chi.Router) {
			g.Post("/", h.CreateGroup)
			g.Get("/", h.ListGroups)
			g.Route("/{groupID}", func(gr chi.Router) {
				gr.Get("/", h.GetGroup)
				gr.Delete("/", h.DeleteGroup)
				gr.Post("/expenses", h.CreateExpense)
				gr.Get("/expenses", h.ListExpenses)
				gr.Get("/balances", h.Balances)
				gr.Get("/settlement", h.Settlement)
			})
		})

		api.Route("/expenses/{expenseID}", func(e chi.Router) {
			e.Get("/", h.GetExpense)
			e.Post("/splits/{memberID}/pay", h.PaySplit)
		})
	})

	return r
}
