package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"riskengine/src/model"
	"riskengine/src/simulator"
)

type runGenerator interface {
	GenerateRun(ctx context.Context, cfg simulator.Config) (*model.Run, error)
}

type runFinder interface {
	FindByID(ctx context.Context, runID string) (*model.Run, error)
}

type simulateRequest struct {
	Exposures int   `json:"exposures"`
	Seed      int64 `json:"seed"`
}

// SimulateRunHandler returns a handler that creates a new run and populates
// its synthetic exposure portfolio. Body fields override the env defaults.
func SimulateRunHandler(gen runGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := simulator.GetConfig()

		var req simulateRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}
		if req.Exposures > 0 {
			cfg.Exposures = req.Exposures
		}
		if req.Seed != 0 {
			cfg.Seed = req.Seed
		}

		run, err := gen.GenerateRun(r.Context(), cfg)
		if err != nil {
			logger.WithError(err).Error("Run generation failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, run)
	}
}

// GetRunHandler returns a handler that fetches one run by id.
func GetRunHandler(runs runFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")

		run, err := runs.FindByID(r.Context(), runID)
		if err != nil {
			logger.WithError(err).Error("Failed to fetch run")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if run == nil {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}
