// Package risk maps a token's signal bundle to a deterministic score and
// classification. The scorer is pure: signals arrive fully populated from the
// orchestrator and are never generated or mutated here.
package risk

// SignalBundle is the per-analysis input to the scorer. Fields the enrichment
// collaborators could not supply arrive as their documented degraded
// defaults, so every evaluation sees a complete bundle.
type SignalBundle struct {
	LiquidityUSD       float64
	Verified           bool
	Honeypot           bool
	BuyTaxPct          float64
	SellTaxPct         float64
	LPLockDays         int
	DeployerAgeHours   float64
	DeployerRugHistory bool
	TopHolderPct       float64 // combined share of the top-10 holders, 0..100
	HasCommunity       bool
	CEXFunded          bool
}

// Level is the classification band of a score.
type Level string

const (
	LevelLow    Level = "low risk"
	LevelMedium Level = "medium risk"
	LevelHigh   Level = "high risk"
)

// Bands holds the inclusive upper bounds of the low and medium bands.
// Anything above MediumMax is high risk (score >= 13 with defaults).
type Bands struct {
	LowMax    int
	MediumMax int
}

// DefaultBands matches the shipped thresholds: <=6 low, 7..12 medium, >=13 high.
var DefaultBands = Bands{LowMax: 6, MediumMax: 12}

// Profile selects the honeypot weighting. The hard profile treats a honeypot
// flag as close to disqualifying.
type Profile struct {
	HoneypotWeight int
}

var (
	HardProfile = Profile{HoneypotWeight: 8}
	SoftProfile = Profile{HoneypotWeight: 5}
)

// ProfileByName resolves a configured profile name, defaulting to hard.
func ProfileByName(name string) Profile {
	if name == "soft" {
		return SoftProfile
	}
	return HardProfile
}

// Assessment is the scorer output. Reasons lists every contributing signal in
// evaluation order, so identical bundles produce identical assessments.
type Assessment struct {
	Score   int
	Reasons []string
	Level   Level
}

// Score evaluates the bundle. The evaluation order is fixed; mitigating
// signals subtract but the final score never goes below zero.
func Score(b SignalBundle, p Profile) (int, []string) {
	score := 0
	var reasons []string

	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	if !b.Verified {
		add(2, "unverified contract")
	}

	switch {
	case b.LiquidityUSD < 5000:
		add(3, "low liquidity")
	case b.LiquidityUSD <= 30000:
		add(1, "thin liquidity")
	}

	if b.Honeypot {
		add(p.HoneypotWeight, "honeypot")
	}

	tax := b.BuyTaxPct
	if b.SellTaxPct > tax {
		tax = b.SellTaxPct
	}
	switch {
	case tax > 5:
		add(4, "high tax")
	case tax >= 3:
		add(1, "elevated tax")
	}

	switch {
	case b.LPLockDays <= 0:
		add(3, "unlocked liquidity")
	case b.LPLockDays < 30:
		add(1, "short lock")
	}

	if b.DeployerAgeHours < 6 {
		add(2, "new deployer wallet")
	}

	// Highest-weight signal after honeypot; prior rugs are the strongest
	// single predictor we have.
	if b.DeployerRugHistory {
		add(5, "deployer rug history")
	}

	switch {
	case b.TopHolderPct > 50:
		add(2, "concentrated holdings")
	case b.TopHolderPct < 20:
		add(-1, "well distributed")
	}

	if b.Verified && b.HasCommunity {
		add(-2, "verified + community")
	}

	if b.CEXFunded {
		add(-1, "CEX-funded")
	}

	if score < 0 {
		score = 0
	}
	return score, reasons
}

// Classify maps a score into its band.
func Classify(score int, bands Bands) Level {
	switch {
	case score <= bands.LowMax:
		return LevelLow
	case score <= bands.MediumMax:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Assess is Score plus Classify in one call.
func Assess(b SignalBundle, p Profile, bands Bands) Assessment {
	score, reasons := Score(b, p)
	return Assessment{Score: score, Reasons: reasons, Level: Classify(score, bands)}
}
