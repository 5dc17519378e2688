// REST CLIENT FOR THE MARKET-PROXY RISK-FREE RATE FEED
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	// Default retry configuration
	defaultRetryAttempts   = 4
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

// rateResponse is the wire shape of the rate feed:
// {"currency":"EUR","annual_rate":0.0315,"as_of":"2026-08-26"}
type rateResponse struct {
	Currency   string  `json:"currency"`
	AnnualRate float64 `json:"annual_rate"`
	AsOf       string  `json:"as_of"`
}

// RateClient fetches the annual risk-free rate for a currency from the
// configured market data endpoint. Used only for scenarios discounting in
// market_proxy mode.
type RateClient struct {
	baseURL string
	http    *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() == 429 || r.StatusCode() >= 500
}

// NewRateClient builds a client for the rate feed at baseURL.
func NewRateClient(baseURL string) *RateClient {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(defaultRetryAttempts).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &RateClient{baseURL: baseURL, http: http}
}

// AnnualRiskFreeRate fetches the current annual risk-free rate for a
// currency. Implements engine.RateSource.
func (c *RateClient) AnnualRiskFreeRate(ctx context.Context, currency string) (float64, error) {
	var out rateResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("currency", currency).
		SetResult(&out).
		Get("/v1/rates/risk-free")
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"component": "RateClient",
			"currency":  currency,
		}).WithError(err).Error("Rate feed request failed")
		return 0, fmt.Errorf("rate feed request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("rate feed returned status %d for %s", resp.StatusCode(), currency)
	}
	if out.AnnualRate < -0.05 || out.AnnualRate > 1 {
		return 0, fmt.Errorf("rate feed returned implausible rate %v for %s", out.AnnualRate, currency)
	}

	logger.WithFields(map[string]interface{}{
		"component": "RateClient",
		"currency":  currency,
		"rate":      out.AnnualRate,
		"as_of":     out.AsOf,
	}).Debug("Fetched risk-free rate")

	return out.AnnualRate, nil
}
