package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/yomikata/yomikata/pkg/api"
	"github.com/yomikata/yomikata/pkg/catalog"
	"github.com/yomikata/yomikata/pkg/compatibility"
	"github.com/yomikata/yomikata/pkg/config"
	"github.com/yomikata/yomikata/pkg/engine/local"
	"github.com/yomikata/yomikata/pkg/extension"
	"github.com/yomikata/yomikata/pkg/observability"
	"github.com/yomikata/yomikata/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	switch cfg.LogLevel() {
	case observability.DebugLevel:
		log.SetLevel(logrus.DebugLevel)
	case observability.WarnLevel:
		log.SetLevel(logrus.WarnLevel)
	case observability.ErrorLevel:
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	engine, err := local.New(cfg.Extension.Dir, cfg.Extension.CacheSize, log)
	if err != nil {
		log.Fatalf("Failed to initialize extension engine: %v", err)
	}
	log.Infof("Extension directory: %s", cfg.Extension.Dir)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	index := extension.NewIndexClient(nil)
	if metrics != nil {
		index.WithObserver(metrics.RecordIndexFetch)
	}
	registry := extension.NewRegistry()
	manager := extension.NewManager(registry, index, compatibility.NewGate(), engine, log)
	svc := catalog.NewService(manager, registry)

	server := api.NewServer(svc, cfg.Extension.RepoURL, log, api.Options{
		Metrics:         metrics,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		DispatchTimeout: cfg.Extension.DispatchTimeout,
	})

	// Health and metrics on a separate port for probes and scraping.
	health := observability.NewHealthChecker(index, cfg.Extension.RepoURL)
	healthRouter := mux.NewRouter()
	healthRouter.HandleFunc("/healthz", health.Liveness).Methods("GET")
	healthRouter.HandleFunc("/readyz", health.Readiness).Methods("GET")
	if metrics != nil {
		healthRouter.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	checker := worker.NewUpdateChecker(svc, cfg.Extension.RepoURL, log, metrics)
	if cfg.Extension.UpdateCheckSchedule != "" {
		if err := checker.Start(cfg.Extension.UpdateCheckSchedule); err != nil {
			log.Fatalf("Failed to start update checker: %v", err)
		}
		defer checker.Stop()
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthRouter,
	}

	go func() {
		log.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Health server failed: %v", err)
		}
	}()

	go func() {
		log.Infof("Yomikata server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Warnf("Server shutdown: %v", err)
	}
	if err := healthServer.Shutdown(ctx); err != nil {
		log.Warnf("Health server shutdown: %v", err)
	}
	log.Info("Server stopped")
}
