package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/finviz/internal/http/auth"
	"github.com/MrJamesThe3rd/finviz/internal/http/budget"
	"github.com/MrJamesThe3rd/finviz/internal/http/export"
	"github.com/MrJamesThe3rd/finviz/internal/http/importcsv"
	"github.com/MrJamesThe3rd/finviz/internal/http/matching"
	"github.com/MrJamesThe3rd/finviz/internal/http/report"
	"github.com/MrJamesThe3rd/finviz/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	// JWTSecret enables bearer token checks on /api/v1 when set.
	JWTSecret string
}

type Handlers struct {
	Transactions *transaction.Handler
	Budgets      *budget.Handler
	Reports      *report.Handler
	Import       *importcsv.Handler
	Categories   *matching.Handler
	Export       *export.Handler
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.JWTSecret))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Budgets.Routes(r)
		})

		r.Route("/reports", h.Reports.Routes)

		r.Route("/import", h.Import.Routes)

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
