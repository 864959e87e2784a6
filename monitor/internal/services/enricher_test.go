package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func honeypotServer(t *testing.T, body string) *HoneypotClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := NewHoneypotClient(testLogger(t))
	client.baseURL = srv.URL
	return client
}

func basescanServer(t *testing.T, status int, body string) *BasescanClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := NewBasescanClient("test-key", testLogger(t))
	client.baseURL = srv.URL
	return client
}

func TestEnrich_PopulatesBundleFromCollaborators(t *testing.T) {
	honeypot := honeypotServer(t, `{
		"honeypotResult": {"isHoneypot": true},
		"simulationResult": {"buyTax": 3.5, "sellTax": 12.0}
	}`)
	basescan := basescanServer(t, http.StatusOK, `{
		"status": "1", "message": "OK",
		"result": [{"SourceCode": "contract Token {}", "ContractName": "Token"}]
	}`)

	enricher := NewBundleEnricher(honeypot, basescan, nil, nil, testLogger(t))
	bundle := enricher.Enrich(context.Background(), "0xtoken", 20000, true)

	assert.True(t, bundle.Honeypot)
	assert.Equal(t, 3.5, bundle.BuyTaxPct)
	assert.Equal(t, 12.0, bundle.SellTaxPct)
	assert.True(t, bundle.Verified)
	assert.Equal(t, 20000.0, bundle.LiquidityUSD)
	assert.True(t, bundle.HasCommunity)
}

func TestEnrich_FailuresDegradeToDefaults(t *testing.T) {
	honeypot := honeypotServer(t, `not json`)
	basescan := basescanServer(t, http.StatusInternalServerError, ``)

	enricher := NewBundleEnricher(honeypot, basescan, nil, nil, testLogger(t))
	bundle := enricher.Enrich(context.Background(), "0xtoken", 8000, false)

	assert.False(t, bundle.Honeypot)
	assert.Zero(t, bundle.BuyTaxPct)
	assert.Zero(t, bundle.SellTaxPct)
	assert.False(t, bundle.Verified)
	assert.Equal(t, defaultLPLockDays, bundle.LPLockDays)
	assert.Equal(t, float64(defaultDeployerAgeHours), bundle.DeployerAgeHours)
	assert.Equal(t, float64(defaultTopHolderPct), bundle.TopHolderPct)
	assert.False(t, bundle.DeployerRugHistory)
	assert.False(t, bundle.CEXFunded)
}

func TestEnrich_UnverifiedSourceCode(t *testing.T) {
	honeypot := honeypotServer(t, `{"honeypotResult": {"isHoneypot": false}, "simulationResult": {}}`)
	basescan := basescanServer(t, http.StatusOK, `{
		"status": "0", "message": "NOTOK",
		"result": [{"SourceCode": ""}]
	}`)

	enricher := NewBundleEnricher(honeypot, basescan, nil, nil, testLogger(t))
	bundle := enricher.Enrich(context.Background(), "0xtoken", 8000, false)

	assert.False(t, bundle.Verified)
	assert.False(t, bundle.Honeypot)
}
