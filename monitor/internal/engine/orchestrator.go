package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Q872/base-sniper-monitor/monitor/internal/alerts"
	"github.com/Q872/base-sniper-monitor/monitor/internal/analysis"
	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
	"github.com/Q872/base-sniper-monitor/monitor/internal/risk"
	"github.com/Q872/base-sniper-monitor/monitor/internal/services"
	"github.com/Q872/base-sniper-monitor/shared/logger"
)

// MarketData feeds the orchestrator with current pair listings.
type MarketData interface {
	LatestPairs(ctx context.Context) ([]services.Pair, error)
}

// Enricher produces the risk signal bundle for one token.
type Enricher interface {
	Enrich(ctx context.Context, tokenAddress string, liquidityUSD float64, hasCommunity bool) risk.SignalBundle
}

// Notifier delivers milestone and risk alerts. Send errors are reported so
// milestone commits can be withheld and retried next cycle.
type Notifier interface {
	MilestoneAlert(address, symbol string, multiple int, initialPrice, currentPrice float64) error
	RiskAlert(address, symbol, level string, score int, reasons []string, liquidityUSD float64) error
}

// CycleSummary reports what one monitoring pass did.
type CycleSummary struct {
	StartedAt       time.Time `json:"started_at"`
	Duration        string    `json:"duration"`
	Fetched         int       `json:"fetched"`
	Analyzed        int       `json:"analyzed"`
	Skipped         int       `json:"skipped"`
	MilestoneAlerts int       `json:"milestone_alerts"`
	RiskAlerts      int       `json:"risk_alerts"`
	Suppressed      int       `json:"suppressed"`
	Failed          int       `json:"failed"`
}

type Config struct {
	FetchTimeout  time.Duration
	EnrichTimeout time.Duration
	MinLiquidity  float64
	Bands         risk.Bands
	Profile       risk.Profile
}

// Orchestrator runs the per-cycle monitoring pipeline: fetch listings,
// record prices, detect milestone crossings, score risk, and dispatch
// alerts through the cooldown gate.
type Orchestrator struct {
	market   MarketData
	enricher Enricher
	notifier Notifier
	store    *ledger.Store
	cooldown *alerts.Cooldown
	cfg      Config
	log      *logger.Logger

	window time.Duration // trailing return window

	mu          sync.Mutex
	lastSummary CycleSummary
	hasSummary  bool
}

func NewOrchestrator(market MarketData, enricher Enricher, notifier Notifier, store *ledger.Store, cooldown *alerts.Cooldown, window time.Duration, cfg Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		market:   market,
		enricher: enricher,
		notifier: notifier,
		store:    store,
		cooldown: cooldown,
		cfg:      cfg,
		log:      log,
		window:   window,
	}
}

// RunCycle executes one full monitoring pass. A fetch failure produces a
// zero-token summary rather than an error; individual token failures are
// isolated and counted.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleSummary {
	started := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	pairs, err := o.market.LatestPairs(fetchCtx)
	cancel()
	if err != nil {
		o.log.Warn("Pair fetch failed, skipping cycle", zap.Error(err))
		summary := CycleSummary{StartedAt: started, Duration: time.Since(started).Round(time.Millisecond).String()}
		o.record(summary)
		return summary
	}

	summary := CycleSummary{StartedAt: started, Fetched: len(pairs)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, pair := range pairs {
		wg.Add(1)
		go func(p services.Pair) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.log.Error("Panic while analyzing token", zap.String("pair", p.PairAddress), zap.Any("panic", r))
					mu.Lock()
					summary.Failed++
					mu.Unlock()
				}
			}()

			outcome := o.analyzeToken(ctx, p)
			mu.Lock()
			summary.Analyzed += outcome.analyzed
			summary.Skipped += outcome.skipped
			summary.MilestoneAlerts += outcome.milestones
			summary.RiskAlerts += outcome.riskAlerts
			summary.Suppressed += outcome.suppressed
			summary.Failed += outcome.failed
			mu.Unlock()
		}(pair)
	}
	wg.Wait()

	summary.Duration = time.Since(started).Round(time.Millisecond).String()
	o.record(summary)
	o.log.Info("Monitoring cycle complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("analyzed", summary.Analyzed),
		zap.Int("milestone_alerts", summary.MilestoneAlerts),
		zap.Int("risk_alerts", summary.RiskAlerts),
		zap.Int("suppressed", summary.Suppressed),
		zap.Int("failed", summary.Failed),
		zap.String("duration", summary.Duration),
	)
	return summary
}

type tokenOutcome struct {
	analyzed   int
	skipped    int
	milestones int
	riskAlerts int
	suppressed int
	failed     int
}

func (o *Orchestrator) analyzeToken(ctx context.Context, p services.Pair) tokenOutcome {
	var out tokenOutcome

	address := strings.TrimSpace(p.BaseToken.Address)
	if address == "" || p.PriceUSDFloat() <= 0 {
		out.skipped = 1
		return out
	}
	if p.LiquidityUSD() < o.cfg.MinLiquidity {
		out.skipped = 1
		return out
	}

	symbol := p.BaseToken.Symbol
	if symbol == "" {
		symbol = "Unknown"
	}
	now := time.Now()

	rec := o.store.Upsert(ctx, address, symbol, p.PriceUSDFloat(), p.LiquidityUSD(), now)
	out.analyzed = 1

	returns := analysis.Returns(rec, now, o.window)
	if returns.Valid {
		for _, m := range analysis.Crossings(rec, returns.PriceMultiple) {
			if err := o.notifier.MilestoneAlert(address, symbol, m, rec.InitialPrice, rec.CurrentPrice); err != nil {
				// Leave the milestone uncommitted so it retries next cycle.
				o.log.Warn("Milestone alert delivery failed",
					zap.String("token", address), zap.Int("multiple", m), zap.Error(err))
				out.failed++
				break
			}
			o.store.CommitMilestone(ctx, address, m)
			out.milestones++
		}
	}

	enrichCtx, cancel := context.WithTimeout(ctx, o.cfg.EnrichTimeout)
	bundle := o.enricher.Enrich(enrichCtx, address, p.LiquidityUSD(), p.HasSocials())
	cancel()

	score, reasons := risk.Score(bundle, o.cfg.Profile)
	level := risk.Classify(score, o.cfg.Bands)

	if level == risk.LevelHigh {
		o.log.Info("High-risk token suppressed",
			zap.String("token", address), zap.Int("score", score), zap.String("reasons", strings.Join(reasons, ", ")))
		out.suppressed = 1
		return out
	}

	if !o.cooldown.Allow(address, score, now) {
		out.suppressed = 1
		return out
	}

	if err := o.notifier.RiskAlert(address, symbol, string(level), score, reasons, bundle.LiquidityUSD); err != nil {
		o.log.Warn("Risk alert delivery failed", zap.String("token", address), zap.Error(err))
		out.failed++
		return out
	}
	out.riskAlerts = 1
	return out
}

func (o *Orchestrator) record(s CycleSummary) {
	o.mu.Lock()
	o.lastSummary = s
	o.hasSummary = true
	o.mu.Unlock()
}

// LastSummary reports the most recent cycle, if any has run.
func (o *Orchestrator) LastSummary() (CycleSummary, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSummary, o.hasSummary
}
