package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/observability"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
	"github.com/tahiry-mg/tahiry/internal/revenus"
	"github.com/tahiry-mg/tahiry/internal/tableau"
	"github.com/tahiry-mg/tahiry/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	GeoHandler           *geo.Handler
	ExerciceHandler      *exercice.Handler
	PlanComptableHandler *plancomptable.Handler
	DonneesHandler       *donnees.Handler
	RevenusHandler       *revenus.Handler
	TableauHandler       *tableau.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with Tahiry defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.GeoHandler != nil {
			api.Route("/geo", params.GeoHandler.MountRoutes)
		}
		if params.ExerciceHandler != nil {
			api.Route("/exercices", params.ExerciceHandler.MountRoutes)
		}
		if params.PlanComptableHandler != nil {
			api.Route("/plan-comptable", params.PlanComptableHandler.MountRoutes)
		}
		if params.DonneesHandler != nil {
			api.Route("/donnees-financieres", params.DonneesHandler.MountRoutes)
		}
		if params.RevenusHandler != nil {
			api.Route("/revenus-miniers", params.RevenusHandler.MountRoutes)
		}
		if params.TableauHandler != nil {
			api.Route("/tableaux", params.TableauHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
