package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Q872/base-sniper-monitor/shared/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.Config{Level: "error", Environment: "test"})
	require.NoError(t, err)
	return log
}

const samplePairsJSON = `{
	"pairs": [
		{
			"chainId": "base",
			"pairAddress": "0xpair1",
			"baseToken": {"address": "0xtoken1", "name": "Pepe Two", "symbol": "PEPE2"},
			"priceUsd": "0.00012",
			"liquidity": {"usd": 15000, "base": 100, "quote": 5},
			"info": {"socials": [{"type": "twitter", "url": "https://x.com/pepe2"}]}
		},
		{
			"chainId": "base",
			"pairAddress": "0xpair2",
			"baseToken": {"address": "0xtoken2", "symbol": "MOON"},
			"priceUsd": "1.5"
		}
	]
}`

func TestLatestPairs_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePairsJSON))
	}))
	defer srv.Close()

	client := NewDexScreenerClient(testLogger(t))
	client.baseURL = srv.URL

	pairs, err := client.LatestPairs(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "0xtoken1", pairs[0].BaseToken.Address)
	assert.Equal(t, "PEPE2", pairs[0].BaseToken.Symbol)
	assert.InDelta(t, 0.00012, pairs[0].PriceUSDFloat(), 1e-12)
	assert.Equal(t, 15000.0, pairs[0].LiquidityUSD())
	assert.True(t, pairs[0].HasSocials())

	// Absent liquidity and info fall back to zero values.
	assert.Equal(t, 0.0, pairs[1].LiquidityUSD())
	assert.False(t, pairs[1].HasSocials())
	assert.Equal(t, 1.5, pairs[1].PriceUSDFloat())
}

func TestLatestPairs_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewDexScreenerClient(testLogger(t))
	client.baseURL = srv.URL

	_, err := client.LatestPairs(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestLatestPairs_NotFoundMeansEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewDexScreenerClient(testLogger(t))
	client.baseURL = srv.URL

	pairs, err := client.LatestPairs(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestLatestPairs_NullPairsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": null}`))
	}))
	defer srv.Close()

	client := NewDexScreenerClient(testLogger(t))
	client.baseURL = srv.URL

	pairs, err := client.LatestPairs(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestPriceUSDFloat_Malformed(t *testing.T) {
	p := Pair{PriceUsd: "not-a-number"}
	assert.Equal(t, 0.0, p.PriceUSDFloat())

	p = Pair{}
	assert.Equal(t, 0.0, p.PriceUSDFloat())
}
