package services

import (
	"context"

	"github.com/Q872/base-sniper-monitor/monitor/internal/risk"
	"github.com/Q872/base-sniper-monitor/shared/logger"
	"go.uber.org/zap"
)

// Degraded defaults applied when an enrichment lookup fails or has no
// provider. Unknown verification and lock state count against the token;
// honeypot and rug history are only asserted when a collaborator says so.
const (
	defaultLPLockDays       = 0
	defaultDeployerAgeHours = 0
	defaultTopHolderPct     = 35 // neutral: no penalty, no mitigation
)

// DeployerIntel supplies deployer-wallet heuristics. Implementations are
// optional; a nil provider degrades to the unfavorable defaults above.
type DeployerIntel interface {
	DeployerProfile(ctx context.Context, tokenAddress string) (ageHours float64, rugHistory bool, cexFunded bool, err error)
}

// HolderIntel supplies holder-distribution and LP-lock heuristics, likewise
// optional.
type HolderIntel interface {
	HolderProfile(ctx context.Context, tokenAddress string) (topHolderPct float64, lpLockDays int, err error)
}

// BundleEnricher assembles the full signal bundle for one token from the
// enrichment collaborators. Every lookup failure degrades to a defined
// default; Enrich never blocks an analysis on a broken collaborator.
type BundleEnricher struct {
	honeypot *HoneypotClient
	basescan *BasescanClient
	deployer DeployerIntel
	holders  HolderIntel
	log      *logger.Logger
}

func NewBundleEnricher(honeypot *HoneypotClient, basescan *BasescanClient, deployer DeployerIntel, holders HolderIntel, log *logger.Logger) *BundleEnricher {
	return &BundleEnricher{
		honeypot: honeypot,
		basescan: basescan,
		deployer: deployer,
		holders:  holders,
		log:      log,
	}
}

// Enrich builds the signal bundle for the token. liquidityUSD and
// hasCommunity come from the pair snapshot the orchestrator already holds.
func (e *BundleEnricher) Enrich(ctx context.Context, tokenAddress string, liquidityUSD float64, hasCommunity bool) risk.SignalBundle {
	bundle := risk.SignalBundle{
		LiquidityUSD:     liquidityUSD,
		HasCommunity:     hasCommunity,
		LPLockDays:       defaultLPLockDays,
		DeployerAgeHours: defaultDeployerAgeHours,
		TopHolderPct:     defaultTopHolderPct,
	}
	tokenField := zap.String("token", tokenAddress)

	if hp, err := e.honeypot.Check(ctx, tokenAddress); err != nil {
		e.log.Warn("Honeypot check degraded to defaults", tokenField, zap.Error(err))
	} else {
		bundle.Honeypot = hp.IsHoneypot
		bundle.BuyTaxPct = hp.BuyTaxPct
		bundle.SellTaxPct = hp.SellTaxPct
	}

	if verified, err := e.basescan.IsVerified(ctx, tokenAddress); err != nil {
		e.log.Warn("Verification check degraded to unverified", tokenField, zap.Error(err))
	} else {
		bundle.Verified = verified
	}

	if e.deployer != nil {
		if age, rug, cex, err := e.deployer.DeployerProfile(ctx, tokenAddress); err != nil {
			e.log.Warn("Deployer lookup degraded to defaults", tokenField, zap.Error(err))
		} else {
			bundle.DeployerAgeHours = age
			bundle.DeployerRugHistory = rug
			bundle.CEXFunded = cex
		}
	}

	if e.holders != nil {
		if top, lock, err := e.holders.HolderProfile(ctx, tokenAddress); err != nil {
			e.log.Warn("Holder lookup degraded to defaults", tokenField, zap.Error(err))
		} else {
			bundle.TopHolderPct = top
			bundle.LPLockDays = lock
		}
	}

	return bundle
}
