// Package analysis holds the pure calculations of the monitoring engine:
// return/multiple derivation and milestone crossing detection. Nothing here
// touches the ledger or any I/O.
package analysis

import (
	"time"

	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
)

// ReturnSet is the derived performance of a token. Valid is false until the
// record has a non-zero initial price, which callers treat as "no data yet".
type ReturnSet struct {
	Valid             bool
	TotalReturnPct    float64
	TrailingReturnPct float64
	PriceMultiple     float64
}

// Returns derives total return, trailing-window return and price multiple
// from a record snapshot.
//
// The trailing anchor is the newest sample at least window old; when the
// record is younger than the window, the initial price anchors instead.
func Returns(rec ledger.TokenRecord, now time.Time, window time.Duration) ReturnSet {
	if rec.InitialPrice <= 0 {
		return ReturnSet{}
	}

	total := (rec.CurrentPrice - rec.InitialPrice) / rec.InitialPrice * 100

	anchor := rec.InitialPrice
	cutoff := now.Add(-window)
	for i := len(rec.History) - 1; i >= 0; i-- {
		if !rec.History[i].Timestamp.After(cutoff) {
			anchor = rec.History[i].Price
			break
		}
	}

	trailing := 0.0
	if anchor > 0 {
		trailing = (rec.CurrentPrice - anchor) / anchor * 100
	}

	return ReturnSet{
		Valid:             true,
		TotalReturnPct:    total,
		TrailingReturnPct: trailing,
		PriceMultiple:     rec.CurrentPrice / rec.InitialPrice,
	}
}
