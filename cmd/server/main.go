// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dkostenko/uah-rate-aggregator/internal/application/scheduler"
	appservice "github.com/dkostenko/uah-rate-aggregator/internal/application/service"
	"github.com/dkostenko/uah-rate-aggregator/internal/config"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/api"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/cache"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/db"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/handler"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/logger"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/metrics"
	"github.com/dkostenko/uah-rate-aggregator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var trackedCurrencies = []string{"USD", "EUR"}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	log.Info("Starting UAH rate aggregator", map[string]interface{}{
		"http_addr":      cfg.HTTPAddr,
		"data_dir":       cfg.DataDir,
		"fetch_interval": cfg.FetchInterval.String(),
		"currencies":     trackedCurrencies,
	})

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data directory", map[string]interface{}{
			"data_dir": cfg.DataDir,
			"error":    err.Error(),
		})
	}

	opts := badger.DefaultOptions(cfg.DataDir)
	opts.Logger = nil
	badgerDB, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"data_dir": cfg.DataDir,
			"error":    err.Error(),
		})
	}
	defer badgerDB.Close()

	rateCache := cache.NewRateCache()
	repo := db.NewCachedRateRepository(db.NewBadgerRateRepository(badgerDB), rateCache, log)

	m := metrics.New(prometheus.DefaultRegisterer)

	privatBank := api.NewPrivatBankClient(cfg.PrivatBankURL, nil, log)
	monoBank := api.NewMonoBankClient(cfg.MonoBankURL, nil, log)
	monoBank.SetRetryPolicy(cfg.RetryAttempts, cfg.RetryBackoff)

	aggregation := appservice.NewAggregationService(repo, log)
	analytics := appservice.NewAnalyticsService(repo, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(cfg.FetchInterval, privatBank, monoBank, aggregation,
		trackedCurrencies, log, m)
	sched.Start(ctx)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))

	exchangeHandler := handler.NewExchangeHandler(analytics, repo, log)
	exchangeHandler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"addr": cfg.HTTPAddr})
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err := <-serverErr:
		log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped", nil)
}
