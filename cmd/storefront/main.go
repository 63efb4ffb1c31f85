package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/internal/config"
	"Storefront/internal/search"
	"Storefront/internal/session"
	"Storefront/internal/storage"
	"Storefront/internal/storefront"
	"Storefront/pkg/kit"
)

func main() {
	service := "storefront"

	cfg, err := config.Load()
	if err != nil {
		l := kit.NewLogger(service, "")
		l.Fatal("config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	st, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err), zap.String("driver", cfg.StorageDriver))
	}
	defer func() { _ = st.Close() }()

	fallback := search.DefaultFallback()
	if cfg.SearchFallbackFile != "" {
		fallback, err = search.LoadFallback(cfg.SearchFallbackFile)
		if err != nil {
			log.Fatal("load search fallback failed", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &storefront.Server{
		Carts: cart.NewRegistry(st, cart.Options{
			Log:     log,
			Metrics: cart.NewMetrics(reg),
			Listeners: []cart.Listener{func(op string, snap cart.Snapshot) {
				log.Debug("cart changed", zap.String("op", op), zap.Int("count", snap.Count()))
			}},
		}, cfg.SessionTTL),
		Search: search.NewIndex(search.PageFiles(cfg.SearchPages), fallback, log),
		Log:    log,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:             log,
		Service:         service,
		Registry:        reg,
		MetricsEnabled:  true,
		MetricsToken:    cfg.MetricsToken,
		Sessions:        session.NewTokenMaker(cfg.SessionSecret),
		SessionTTL:      cfg.SessionTTL,
		SecureCookies:   cfg.SecureCookies,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		TrustedProxies:  cfg.TrustedProxies,
	})

	if err := kit.RunHTTPServer(ctx, ":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
