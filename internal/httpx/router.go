package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/stayreport/internal/config"
	"github.com/AngelCh415/stayreport/internal/ingest"
	"github.com/AngelCh415/stayreport/internal/metrics"
	"github.com/AngelCh415/stayreport/internal/telemetry"
	"github.com/AngelCh415/stayreport/internal/utils"
)

func NewRouter(log *slog.Logger, loader *ingest.Loader, svc *metrics.Service, obs *telemetry.Metrics, cfg config.Config) http.Handler {
	h := &handlers{log: log, loader: loader, svc: svc, cfg: cfg}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log, obs))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", obs.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(utils.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, log))
		r.Post("/periods", h.periods)
		r.Route("/reports", func(r chi.Router) {
			r.Post("/monthly", h.monthly)
			r.Post("/compare", h.compare)
			r.Post("/trend", h.trend)
		})
	})

	return mux
}
