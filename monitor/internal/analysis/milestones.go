package analysis

import (
	"math"

	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
)

// Crossings returns every integer milestone in [2, floor(currentMultiple)]
// that has not yet been announced for the token, ascending. A price that
// jumps several multiples in one poll yields all of them at once; a repeat
// call after the caller committed them yields nothing.
func Crossings(rec ledger.TokenRecord, currentMultiple float64) []int {
	top := int(math.Floor(currentMultiple))
	if top < 2 {
		return nil
	}

	var crossed []int
	for m := 2; m <= top; m++ {
		if !rec.HasMilestone(m) {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
