package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"riskengine/src/connectors"
	"riskengine/src/engine"
	"riskengine/src/handler"
	"riskengine/src/repository"
	"riskengine/src/simulator"
	"riskengine/src/store"
)

// StartServer wires the engine's collaborators, mounts the routes and serves
// until SIGINT/SIGTERM.
func StartServer(port string) {
	runRepo := repository.NewRunRepository()
	exposureRepo := repository.NewExposureRepository()
	scenarioRepo := repository.NewScenarioRepository()
	resultRepo := repository.NewECLResultRepository()
	exceptionRepo := repository.NewExceptionRepository()
	artifactRepo := repository.NewArtifactRepository()

	artifactStore, err := store.NewStore(store.GetConfig(), artifactRepo)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build artifact store")
	}
	cache := store.NewCache(artifactStore)

	rates := connectors.NewRateClient(connectors.GetConfig().RateFeedURL)
	batchEngine := engine.NewBatchEngine(
		exposureRepo, scenarioRepo, resultRepo, exceptionRepo,
		cache, rates, engine.GetConfig(),
	)
	generator := simulator.NewGenerator(runRepo, exposureRepo)

	if err := scenarioRepo.SeedDefaults(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to seed default scenarios")
	}

	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Post("/runs", handler.SimulateRunHandler(generator))
	r.Get("/runs/{runID}", handler.GetRunHandler(runRepo))
	r.Post("/ecl", handler.ComputeECLHandler(batchEngine))
	r.Get("/runs/{runID}/ecl/results", handler.ListECLResultsHandler(resultRepo))
	r.Get("/runs/{runID}/ecl/segments", handler.SegmentTotalsHandler(resultRepo))

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
