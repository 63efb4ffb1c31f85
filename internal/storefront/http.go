package storefront

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

const limitWindow = 60 * time.Second

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Sessions      *session.TokenMaker
	SessionTTL    time.Duration
	SecureCookies bool

	CORSOrigins     []string
	RateLimitPerMin int
	TrustedProxies  []netip.Prefix
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.CORS(deps.CORSOrigins))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	limiter := kit.NewIPRateLimiter(deps.RateLimitPerMin, limitWindow, deps.TrustedProxies...)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.ready)

	r.Get("/search", s.handleSearch)
	r.With(limiter.Middleware).Post("/search/reindex", s.handleReindex)

	r.Group(func(cr chi.Router) {
		cr.Use(session.Middleware(deps.Sessions, deps.SessionTTL, deps.SecureCookies, deps.Log))

		cr.Get("/cart", s.withCart(s.getCart))
		cr.Get("/cart/badge", s.withCart(s.getBadge))

		cr.Group(func(mr chi.Router) {
			mr.Use(limiter.Middleware)
			mr.Post("/cart/items", s.withCart(s.addItem))
			mr.Post("/cart/items/{id}/increase", s.withCart(s.increase))
			mr.Post("/cart/items/{id}/decrease", s.withCart(s.decrease))
			mr.Delete("/cart/items/{id}", s.withCart(s.remove))
			mr.Post("/checkout", s.withCart(s.checkout))
		})
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
