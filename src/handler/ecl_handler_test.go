package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"riskengine/src/engine"
	"riskengine/src/model"
	"riskengine/src/repository"
	"riskengine/src/store"
)

type mockBatchRunner struct {
	result      *engine.BatchResult
	hit         bool
	err         error
	calledCount int
	runID       string
	scenarioID  string
}

func (m *mockBatchRunner) Run(ctx context.Context, runID, scenarioID string) (*engine.BatchResult, bool, error) {
	m.calledCount++
	m.runID = runID
	m.scenarioID = scenarioID
	return m.result, m.hit, m.err
}

type mockResultLister struct {
	results []model.ECLResult
	totals  []repository.SegmentTotal
	err     error
}

func (m *mockResultLister) ListByRunScenario(ctx context.Context, runID, scenarioID string) ([]model.ECLResult, error) {
	return m.results, m.err
}

func (m *mockResultLister) SegmentTotals(ctx context.Context, runID, scenarioID string) ([]repository.SegmentTotal, error) {
	return m.totals, m.err
}

func batchResultFixture(t *testing.T) *engine.BatchResult {
	t.Helper()
	table := store.NewTable()
	if err := table.AddStringColumn("stage", []string{"S1", "S2"}); err != nil {
		t.Fatalf("failed to build fixture table: %v", err)
	}
	return &engine.BatchResult{
		RunID:      "run-1",
		ScenarioID: "baseline",
		Table:      table,
		Segments: []engine.SegmentRollup{
			{SegmentID: "corporate|bank_eu", Exposures: 2, TotalEAD: 180000, TotalECL: 5400},
		},
	}
}

func withRunID(req *http.Request, runID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("runID", runID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestComputeECLHandler_Success(t *testing.T) {
	mockRunner := &mockBatchRunner{result: batchResultFixture(t), hit: true}
	handler := ComputeECLHandler(mockRunner)

	body := strings.NewReader(`{"run_id":"run-1","scenario_id":"baseline"}`)
	req := httptest.NewRequest(http.MethodPost, "/ecl", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	assert.Equal(t, 1, mockRunner.calledCount)
	assert.Equal(t, "run-1", mockRunner.runID)
	assert.Equal(t, "baseline", mockRunner.scenarioID)

	var resp struct {
		Rows     int  `json:"rows"`
		CacheHit bool `json:"cache_hit"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	assert.Equal(t, 2, resp.Rows)
	assert.True(t, resp.CacheHit)
}

func TestComputeECLHandler_MissingFields(t *testing.T) {
	mockRunner := &mockBatchRunner{}
	handler := ComputeECLHandler(mockRunner)

	req := httptest.NewRequest(http.MethodPost, "/ecl", strings.NewReader(`{"run_id":"run-1"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	assert.Zero(t, mockRunner.calledCount)
}

func TestComputeECLHandler_InvalidBody(t *testing.T) {
	handler := ComputeECLHandler(&mockBatchRunner{})

	req := httptest.NewRequest(http.MethodPost, "/ecl", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestComputeECLHandler_ScenarioNotFound(t *testing.T) {
	mockRunner := &mockBatchRunner{err: fmt.Errorf("%w: nope", repository.ErrScenarioNotFound)}
	handler := ComputeECLHandler(mockRunner)

	body := strings.NewReader(`{"run_id":"run-1","scenario_id":"nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/ecl", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestComputeECLHandler_ValidationFailure(t *testing.T) {
	mockRunner := &mockBatchRunner{err: &engine.ValidationError{Field: "run_id", Reason: "run has no exposures"}}
	handler := ComputeECLHandler(mockRunner)

	body := strings.NewReader(`{"run_id":"run-1","scenario_id":"baseline"}`)
	req := httptest.NewRequest(http.MethodPost, "/ecl", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestComputeECLHandler_EngineError(t *testing.T) {
	mockRunner := &mockBatchRunner{err: assert.AnError}
	handler := ComputeECLHandler(mockRunner)

	body := strings.NewReader(`{"run_id":"run-1","scenario_id":"baseline"}`)
	req := httptest.NewRequest(http.MethodPost, "/ecl", body)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestListECLResultsHandler_RequiresScenario(t *testing.T) {
	handler := ListECLResultsHandler(&mockResultLister{})

	req := withRunID(httptest.NewRequest(http.MethodGet, "/runs/run-1/ecl/results", nil), "run-1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestListECLResultsHandler_Success(t *testing.T) {
	lister := &mockResultLister{results: []model.ECLResult{
		{RunID: "run-1", ScenarioID: "baseline", ExposureID: 10, Stage: "S1"},
	}}
	handler := ListECLResultsHandler(lister)

	req := withRunID(httptest.NewRequest(http.MethodGet, "/runs/run-1/ecl/results?scenarioId=baseline", nil), "run-1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var rows []model.ECLResult
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	assert.Len(t, rows, 1)
	assert.Equal(t, uint(10), rows[0].ExposureID)
}

func TestSegmentTotalsHandler_Success(t *testing.T) {
	lister := &mockResultLister{totals: []repository.SegmentTotal{
		{SegmentID: "corporate|bank_eu", Rows: 2, TotalEAD: 180000, TotalECL: 5400},
	}}
	handler := SegmentTotalsHandler(lister)

	req := withRunID(httptest.NewRequest(http.MethodGet, "/runs/run-1/ecl/segments?scenarioId=baseline", nil), "run-1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var totals []repository.SegmentTotal
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	assert.Len(t, totals, 1)
	assert.Equal(t, int64(2), totals[0].Rows)
}

func TestSegmentTotalsHandler_RepoError(t *testing.T) {
	handler := SegmentTotalsHandler(&mockResultLister{err: assert.AnError})

	req := withRunID(httptest.NewRequest(http.MethodGet, "/runs/run-1/ecl/segments?scenarioId=baseline", nil), "run-1")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}
