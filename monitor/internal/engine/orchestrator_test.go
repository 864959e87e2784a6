package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Q872/base-sniper-monitor/monitor/internal/alerts"
	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
	"github.com/Q872/base-sniper-monitor/monitor/internal/risk"
	"github.com/Q872/base-sniper-monitor/monitor/internal/services"
	"github.com/Q872/base-sniper-monitor/shared/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.Config{Level: "error", Environment: "test"})
	require.NoError(t, err)
	return log
}

type fakeMarket struct {
	pairs []services.Pair
	err   error
}

func (f *fakeMarket) LatestPairs(ctx context.Context) ([]services.Pair, error) {
	return f.pairs, f.err
}

type fakeEnricher struct {
	bundle risk.SignalBundle
}

func (f *fakeEnricher) Enrich(ctx context.Context, tokenAddress string, liquidityUSD float64, hasCommunity bool) risk.SignalBundle {
	b := f.bundle
	b.LiquidityUSD = liquidityUSD
	b.HasCommunity = hasCommunity
	return b
}

type milestoneCall struct {
	address  string
	multiple int
}

type fakeNotifier struct {
	mu           sync.Mutex
	milestoneErr error
	milestones   []milestoneCall
	riskAlerts   int
}

func (f *fakeNotifier) MilestoneAlert(address, symbol string, multiple int, initialPrice, currentPrice float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.milestoneErr != nil {
		return f.milestoneErr
	}
	f.milestones = append(f.milestones, milestoneCall{address: address, multiple: multiple})
	return nil
}

func (f *fakeNotifier) RiskAlert(address, symbol, level string, score int, reasons []string, liquidityUSD float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.riskAlerts++
	return nil
}

func pair(address, symbol, price string, liquidity float64) services.Pair {
	return services.Pair{
		ChainID:     "base",
		PairAddress: "pair-" + address,
		BaseToken:   services.Token{Address: address, Symbol: symbol},
		PriceUsd:    price,
		Liquidity:   &services.Liquidity{Usd: liquidity},
	}
}

// cleanBundle scores low risk so alerts pass the band check.
func cleanBundle() risk.SignalBundle {
	return risk.SignalBundle{
		Verified:         true,
		LPLockDays:       180,
		DeployerAgeHours: 720,
		TopHolderPct:     15,
	}
}

// toxicBundle scores high risk (honeypot 8 + unverified 2 + unlocked 3 + new
// deployer 2 + rug 5 ...).
func toxicBundle() risk.SignalBundle {
	return risk.SignalBundle{
		Honeypot:           true,
		DeployerRugHistory: true,
		TopHolderPct:       80,
	}
}

func newTestOrchestrator(t *testing.T, market MarketData, enricher Enricher, notifier Notifier) (*Orchestrator, *ledger.Store) {
	t.Helper()
	log := testLogger(t)
	store := ledger.NewStore(context.Background(), 150, nil, log)
	cooldown := alerts.NewCooldown(time.Hour, 24*time.Hour)
	orch := NewOrchestrator(market, enricher, notifier, store, cooldown, 24*time.Hour, Config{
		FetchTimeout:  5 * time.Second,
		EnrichTimeout: 5 * time.Second,
		MinLiquidity:  5000,
		Bands:         risk.DefaultBands,
		Profile:       risk.HardProfile,
	}, log)
	return orch, store
}

func TestRunCycle_FetchFailureYieldsZeroTokenCycle(t *testing.T) {
	market := &fakeMarket{err: errors.New("upstream 500")}
	orch, _ := newTestOrchestrator(t, market, &fakeEnricher{bundle: cleanBundle()}, &fakeNotifier{})

	summary := orch.RunCycle(context.Background())

	assert.Zero(t, summary.Fetched)
	assert.Zero(t, summary.Analyzed)

	last, ok := orch.LastSummary()
	assert.True(t, ok)
	assert.Equal(t, summary.Fetched, last.Fetched)
}

func TestRunCycle_SkipsUnusablePairs(t *testing.T) {
	market := &fakeMarket{pairs: []services.Pair{
		pair("", "NOADDR", "1.0", 10000),
		pair("0xnoquote", "NOQ", "0", 10000),
		pair("0xthin", "THIN", "1.0", 100),
		pair("0xgood", "GOOD", "1.0", 10000),
	}}
	notifier := &fakeNotifier{}
	orch, store := newTestOrchestrator(t, market, &fakeEnricher{bundle: cleanBundle()}, notifier)

	summary := orch.RunCycle(context.Background())

	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 1, summary.Analyzed)
	assert.Equal(t, 1, store.Len())
	_, tracked := store.Snapshot("0xgood")
	assert.True(t, tracked)
}

func TestRunCycle_MilestonesCommittedOnlyAfterDelivery(t *testing.T) {
	market := &fakeMarket{pairs: []services.Pair{pair("0xabc", "PEPE", "1.0", 10000)}}
	notifier := &fakeNotifier{}
	orch, store := newTestOrchestrator(t, market, &fakeEnricher{bundle: cleanBundle()}, notifier)

	// Establish the initial price at 1.0.
	orch.RunCycle(context.Background())

	// 3x with a broken notifier: nothing may be committed.
	market.pairs = []services.Pair{pair("0xabc", "PEPE", "3.0", 10000)}
	notifier.milestoneErr = errors.New("telegram down")
	summary := orch.RunCycle(context.Background())

	assert.Zero(t, summary.MilestoneAlerts)
	assert.Equal(t, 1, summary.Failed)
	rec, _ := store.Snapshot("0xabc")
	assert.Empty(t, rec.NotifiedMultiples)

	// Next cycle the notifier recovers and both crossings are retried.
	notifier.milestoneErr = nil
	summary = orch.RunCycle(context.Background())

	assert.Equal(t, 2, summary.MilestoneAlerts)
	assert.Equal(t, []milestoneCall{{"0xabc", 2}, {"0xabc", 3}}, notifier.milestones)
	rec, _ = store.Snapshot("0xabc")
	assert.Equal(t, []int{2, 3}, rec.NotifiedMultiples)
}

func TestRunCycle_MilestonesNotRepeated(t *testing.T) {
	market := &fakeMarket{pairs: []services.Pair{pair("0xabc", "PEPE", "1.0", 10000)}}
	notifier := &fakeNotifier{}
	orch, _ := newTestOrchestrator(t, market, &fakeEnricher{bundle: cleanBundle()}, notifier)

	orch.RunCycle(context.Background())

	market.pairs = []services.Pair{pair("0xabc", "PEPE", "5.7", 10000)}
	summary := orch.RunCycle(context.Background())
	assert.Equal(t, 4, summary.MilestoneAlerts)

	// Price holds; no new crossings, no repeat alerts.
	summary = orch.RunCycle(context.Background())
	assert.Zero(t, summary.MilestoneAlerts)
	assert.Len(t, notifier.milestones, 4)
}

func TestRunCycle_HighRiskIsSuppressed(t *testing.T) {
	market := &fakeMarket{pairs: []services.Pair{pair("0xabc", "RUG", "1.0", 10000)}}
	notifier := &fakeNotifier{}
	orch, _ := newTestOrchestrator(t, market, &fakeEnricher{bundle: toxicBundle()}, notifier)

	summary := orch.RunCycle(context.Background())

	assert.Equal(t, 1, summary.Analyzed)
	assert.Equal(t, 1, summary.Suppressed)
	assert.Zero(t, summary.RiskAlerts)
	assert.Zero(t, notifier.riskAlerts)
}

func TestRunCycle_CooldownSuppressesRepeatRiskAlerts(t *testing.T) {
	market := &fakeMarket{pairs: []services.Pair{pair("0xabc", "PEPE", "1.0", 10000)}}
	notifier := &fakeNotifier{}
	orch, _ := newTestOrchestrator(t, market, &fakeEnricher{bundle: cleanBundle()}, notifier)

	first := orch.RunCycle(context.Background())
	second := orch.RunCycle(context.Background())

	assert.Equal(t, 1, first.RiskAlerts)
	assert.Zero(t, second.RiskAlerts)
	assert.Equal(t, 1, second.Suppressed)
	assert.Equal(t, 1, notifier.riskAlerts)
}

func TestRunCycle_ManyTokensAllSurvive(t *testing.T) {
	var pairs []services.Pair
	for _, addr := range []string{"0xa", "0xb", "0xc", "0xd", "0xe"} {
		pairs = append(pairs, pair(addr, "TOK", "1.0", 10000))
	}
	market := &fakeMarket{pairs: pairs}
	orch, store := newTestOrchestrator(t, market, &fakeEnricher{bundle: cleanBundle()}, &fakeNotifier{})

	summary := orch.RunCycle(context.Background())

	assert.Equal(t, 5, summary.Fetched)
	assert.Equal(t, 5, summary.Analyzed)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, 5, summary.RiskAlerts)
}
