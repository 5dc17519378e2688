package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"riskengine/src/engine"
	"riskengine/src/model"
	"riskengine/src/repository"
)

type batchRunner interface {
	Run(ctx context.Context, runID, scenarioID string) (*engine.BatchResult, bool, error)
}

type resultLister interface {
	ListByRunScenario(ctx context.Context, runID, scenarioID string) ([]model.ECLResult, error)
	SegmentTotals(ctx context.Context, runID, scenarioID string) ([]repository.SegmentTotal, error)
}

type computeECLRequest struct {
	RunID      string `json:"run_id"`
	ScenarioID string `json:"scenario_id"`
}

type computeECLResponse struct {
	RunID      string                 `json:"run_id"`
	ScenarioID string                 `json:"scenario_id"`
	Rows       int                    `json:"rows"`
	CacheHit   bool                   `json:"cache_hit"`
	Segments   []engine.SegmentRollup `json:"segments"`
}

// ComputeECLHandler returns a handler that runs (or serves from cache) the
// ECL batch for one run and scenario.
func ComputeECLHandler(runner batchRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req computeECLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.RunID == "" || req.ScenarioID == "" {
			http.Error(w, "run_id and scenario_id are required", http.StatusBadRequest)
			return
		}

		result, hit, err := runner.Run(r.Context(), req.RunID, req.ScenarioID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, computeECLResponse{
			RunID:      result.RunID,
			ScenarioID: result.ScenarioID,
			Rows:       result.Table.NumRows(),
			CacheHit:   hit,
			Segments:   result.Segments,
		})
	}
}

// ListECLResultsHandler returns the persisted per-exposure rows of a batch.
func ListECLResultsHandler(lister resultLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")
		scenarioID := r.URL.Query().Get("scenarioId")
		if scenarioID == "" {
			http.Error(w, "scenarioId is required", http.StatusBadRequest)
			return
		}

		results, err := lister.ListByRunScenario(r.Context(), runID, scenarioID)
		if err != nil {
			logger.WithError(err).Error("Failed to list ECL results")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// SegmentTotalsHandler returns the persisted per-segment rollup of a batch.
func SegmentTotalsHandler(lister resultLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")
		scenarioID := r.URL.Query().Get("scenarioId")
		if scenarioID == "" {
			http.Error(w, "scenarioId is required", http.StatusBadRequest)
			return
		}

		totals, err := lister.SegmentTotals(r.Context(), runID, scenarioID)
		if err != nil {
			logger.WithError(err).Error("Failed to aggregate segment totals")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	var validationErr *engine.ValidationError
	switch {
	case errors.Is(err, repository.ErrScenarioNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.WithError(err).Error("ECL batch failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}
