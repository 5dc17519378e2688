package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAnnualRiskFreeRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rates/risk-free" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if currency := r.URL.Query().Get("currency"); currency != "EUR" {
			t.Errorf("unexpected currency %q", currency)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"currency":"EUR","annual_rate":0.0315,"as_of":"2026-08-26"}`)
	}))
	defer server.Close()

	client := NewRateClient(server.URL)
	rate, err := client.AnnualRiskFreeRate(context.Background(), "EUR")
	if err != nil {
		t.Fatalf("unexpected error fetching rate: %v", err)
	}
	if rate != 0.0315 {
		t.Fatalf("expected rate 0.0315, got %v", rate)
	}
}

func TestAnnualRiskFreeRateRetriesServerErrors(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"currency":"USD","annual_rate":0.045,"as_of":"2026-08-26"}`)
	}))
	defer server.Close()

	client := NewRateClient(server.URL)
	rate, err := client.AnnualRiskFreeRate(context.Background(), "USD")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if rate != 0.045 {
		t.Fatalf("expected rate 0.045, got %v", rate)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Fatalf("expected 2 calls (one retry), got %d", got)
	}
}

func TestAnnualRiskFreeRateClientErrorNotRetried(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRateClient(server.URL)
	if _, err := client.AnnualRiskFreeRate(context.Background(), "XXX"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected exactly 1 call for a client error, got %d", got)
	}
}

func TestAnnualRiskFreeRateRejectsImplausibleRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"currency":"EUR","annual_rate":7.5,"as_of":"2026-08-26"}`)
	}))
	defer server.Close()

	client := NewRateClient(server.URL)
	if _, err := client.AnnualRiskFreeRate(context.Background(), "EUR"); err == nil {
		t.Fatal("expected error for implausible rate")
	}
}
